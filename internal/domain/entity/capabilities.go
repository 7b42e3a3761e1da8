package entity

// Capability décrit une action qu'un rôle peut exercer sur un signalement.
// Un seul jeu de permissions remplace les trois dashboards dupliqués par rôle
// de l'ancien frontend.
type Capability string

const (
	CapView               Capability = "view"
	CapAssign             Capability = "assign"
	CapReassignDepartment Capability = "reassign_department"
	CapChangeStatus       Capability = "change_status"
	CapChangePriority     Capability = "change_priority"
	CapEditDetails        Capability = "edit_details"
	CapComment            Capability = "comment"
	CapDelete             Capability = "delete"
)

var roleCapabilities = map[UserRole]map[Capability]bool{
	RoleDepartmentHead: {
		CapView:               true,
		CapAssign:             true,
		CapReassignDepartment: true,
		CapChangeStatus:       true,
		CapChangePriority:     true,
		CapEditDetails:        true,
		CapComment:            true,
	},
	RoleFieldStaff: {
		CapView:         true,
		CapChangeStatus: true,
		CapComment:      true,
	},
	RoleCitizen: {
		CapView:    true,
		CapComment: true,
	},
}

// Can vérifie qu'un rôle possède une capacité. Le super_admin a tout.
// La réouverture par le citoyen propriétaire est un cas particulier géré
// dans le service (elle dépend du signalement, pas seulement du rôle).
func (r UserRole) Can(c Capability) bool {
	if r == RoleSuperAdmin {
		return true
	}
	return roleCapabilities[r][c]
}
