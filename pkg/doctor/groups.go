package doctor

// GroupDefinition holds the metadata for a check group.
type GroupDefinition struct {
	Name        string
	Description string
}

var groupDefinitions = map[string]GroupDefinition{
	GroupAgents: {
		Name:        "Coding agents",
		Description: "Agent CLIs that takopi can drive",
	},
	GroupToolchain: {
		Name:        "Toolchain",
		Description: "Java build tools and agent runtimes",
	},
}

// GetGroups returns all check groups without results.
func GetGroups() []CheckGroup {
	var groups []CheckGroup
	for _, id := range GetAllGroupIDs() {
		def := groupDefinitions[id]
		groups = append(groups, CheckGroup{
			ID:          id,
			Name:        def.Name,
			Description: def.Description,
		})
	}
	return groups
}

// GetGroupDefinition returns the definition for a specific group.
func GetGroupDefinition(groupID string) (GroupDefinition, bool) {
	def, ok := groupDefinitions[groupID]
	return def, ok
}

// GetAllGroupIDs returns all group IDs in display order.
func GetAllGroupIDs() []string {
	return []string{GroupAgents, GroupToolchain}
}
