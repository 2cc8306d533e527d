package auth

// Roles known to the system.
const (
	RoleLecturer    = "lecturer"
	RoleAdmin       = "admin"
	RoleStorekeeper = "storekeeper"
)

type Operation string

const (
	OpItemRead  Operation = "item.read"
	OpItemWrite Operation = "item.write"

	OpDocumentRead  Operation = "document.read"
	OpDocumentWrite Operation = "document.write"

	OpRequestRead     Operation = "request.read"
	OpRequestCreate   Operation = "request.create"
	OpRequestListMine Operation = "request.list_mine"
	OpRequestListAll  Operation = "request.list_all"
	OpRequestDecide   Operation = "request.decide"
	OpRequestIssue    Operation = "request.issue"
	OpRequestReturn   Operation = "request.return"
	OpRequestQueues   Operation = "request.queues"

	OpAccountCreate Operation = "account.create"
)

// Single place for role-based access. Handlers never check roles directly.
var policy = map[Operation][]string{
	OpItemRead:  {RoleLecturer, RoleAdmin, RoleStorekeeper},
	OpItemWrite: {RoleAdmin, RoleStorekeeper},

	OpDocumentRead:  {RoleLecturer, RoleAdmin, RoleStorekeeper},
	OpDocumentWrite: {RoleAdmin},

	OpRequestRead:     {RoleLecturer, RoleAdmin, RoleStorekeeper},
	OpRequestCreate:   {RoleLecturer},
	OpRequestListMine: {RoleLecturer},
	OpRequestListAll:  {RoleAdmin},
	OpRequestDecide:   {RoleAdmin},
	OpRequestIssue:    {RoleStorekeeper},
	OpRequestReturn:   {RoleStorekeeper},
	OpRequestQueues:   {RoleStorekeeper},

	OpAccountCreate: {RoleAdmin},
}

// Allowed reports whether role may invoke op. Unknown operations are denied.
func Allowed(role string, op Operation) bool {
	roles, ok := policy[op]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
