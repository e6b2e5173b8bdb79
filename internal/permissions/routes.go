package permissions

import "go-ticket-pos/internal/models"

// Route is a navigation node as the panel's router consumes it, with the role's flags.
type Route struct {
	ID        uint    `json:"id"`
	ParentID  *uint   `json:"parent_id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Path      string  `json:"path"`
	Icon      string  `json:"icon"`
	SortOrder int     `json:"sort_order"`
	CanView   bool    `json:"can_view"`
	CanCreate bool    `json:"can_create"`
	CanUpdate bool    `json:"can_update"`
	CanDelete bool    `json:"can_delete"`
	Children  []Route `json:"children,omitempty"`
}

// GenerateRoutes keeps every node the role may view plus the ancestors needed to reach it.
// Ancestors kept only for structure carry their own (possibly false) flags. When all is set
// every node is returned with every flag on.
func GenerateRoutes(tree []models.Navigation, perms []models.RolePermission, all bool) []Route {
	byNav := make(map[uint]models.RolePermission, len(perms))
	for _, p := range perms {
		byNav[p.NavigationID] = p
	}
	return generate(tree, byNav, all)
}

func generate(nodes []models.Navigation, perms map[uint]models.RolePermission, all bool) []Route {
	out := []Route{}
	for _, n := range nodes {
		children := generate(n.Children, perms, all)
		perm, ok := perms[n.ID]
		visible := all || (ok && perm.CanView)
		if !visible && len(children) == 0 {
			continue
		}

		r := Route{
			ID:        n.ID,
			ParentID:  n.ParentID,
			Name:      n.Name,
			Slug:      n.Slug,
			Path:      n.Path,
			Icon:      n.Icon,
			SortOrder: n.SortOrder,
			Children:  children,
		}
		if all {
			r.CanView, r.CanCreate, r.CanUpdate, r.CanDelete = true, true, true, true
		} else if ok {
			r.CanView, r.CanCreate, r.CanUpdate, r.CanDelete = perm.CanView, perm.CanCreate, perm.CanUpdate, perm.CanDelete
		}
		if len(r.Children) == 0 {
			r.Children = nil
		}
		out = append(out, r)
	}
	return out
}
