// Package rbac decides which note operations a caller's role may reach.
// Ownership is enforced separately by the repository.
package rbac

type Role string
type Action string

const (
	RoleAnon          Role = "anon"
	RoleAuthenticated Role = "authenticated"
)

const (
	ActionReadSession  Action = "session:read"
	ActionEndSession   Action = "session:end"
	ActionListNotes    Action = "notes:list"
	ActionCreateNote   Action = "notes:create"
	ActionReadNote     Action = "notes:read"
	ActionUpdateNote   Action = "notes:update"
	ActionDeleteNote   Action = "notes:delete"
	ActionParseContent Action = "content:parse"
	ActionPreviewLink  Action = "content:preview-link"
)

func Can(role Role, action Action) bool {
	switch role {
	case RoleAuthenticated:
		return true
	case RoleAnon:
		return action == ActionReadSession
	default:
		return false
	}
}
