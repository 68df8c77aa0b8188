package consts

const (
	RoleSuperAdmin  = "SUPER_ADMIN"
	RoleAdmin       = "ADMIN"
	RoleBusOperator = "BUS_OPERATOR"
	RoleCafeStaff   = "CAFE_STAFF"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
