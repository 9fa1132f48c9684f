package authapi

// Route path constants, relative to the API base URL
const (
	// Session routes
	RouteLogin        = "/auth/login/"
	RouteLogout       = "/auth/logout/"
	RouteRefreshToken = "/auth/refresh-token"
	RouteProfile      = "/auth/profile/"

	// Module routes
	RouteHierarchy   = "/hierarchy/"
	RouteAttendance  = "/hr/attendance/"
	RouteEmployees   = "/hr/employees/"
	RouteCustomers   = "/crm/customers/"
	RouteEnquiries   = "/franchise/enquiries/"
	RouteTickets     = "/support/tickets/"
	RouteFinance     = "/accounts/finance/"
	RouteRoles       = "/rbac/roles/"
	RoutePermissions = "/rbac/permissions/"
)
