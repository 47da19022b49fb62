package policy

import "retail-console/internal/core/domain"

// RouteRule declares which roles may open a console page
type RouteRule struct {
	Pattern      string
	AllowedRoles domain.RoleSet
}

// SalespersonRoutes is the fixed allow-list for salespeople. It applies
// regardless of the roles a page declares.
var SalespersonRoutes = []string{
	"/",
	"/sales",
	"/sales/new",
	"/sales/:id",
	"/clients",
	"/clients/:id",
	"/debts",
	"/debts/:id",
	"/products",
	"/stocks",
	"/profile",
}

// ConsoleRules lists the console pages and the roles declared for each
var ConsoleRules = []RouteRule{
	{Pattern: "/", AllowedRoles: domain.NewRoleSet(domain.RoleStorekeeper, domain.RoleAccountant)},
	{Pattern: "/profile", AllowedRoles: domain.NewRoleSet(domain.RoleStorekeeper, domain.RoleAccountant)},
	{Pattern: "/stores", AllowedRoles: domain.NewRoleSet()},
	{Pattern: "/stores/:id", AllowedRoles: domain.NewRoleSet()},
	{Pattern: "/products", AllowedRoles: domain.NewRoleSet(domain.RoleStorekeeper)},
	{Pattern: "/products/:id", AllowedRoles: domain.NewRoleSet(domain.RoleStorekeeper)},
	{Pattern: "/stocks", AllowedRoles: domain.NewRoleSet(domain.RoleStorekeeper)},
	{Pattern: "/stocks/:id", AllowedRoles: domain.NewRoleSet(domain.RoleStorekeeper)},
	{Pattern: "/recycling", AllowedRoles: domain.NewRoleSet(domain.RoleStorekeeper)},
	{Pattern: "/clients", AllowedRoles: domain.NewRoleSet(domain.RoleAccountant)},
	{Pattern: "/clients/:id", AllowedRoles: domain.NewRoleSet(domain.RoleAccountant)},
	{Pattern: "/sales", AllowedRoles: domain.NewRoleSet(domain.RoleAccountant)},
	{Pattern: "/sales/new", AllowedRoles: domain.NewRoleSet()},
	{Pattern: "/sales/:id", AllowedRoles: domain.NewRoleSet(domain.RoleAccountant)},
	{Pattern: "/debts", AllowedRoles: domain.NewRoleSet(domain.RoleAccountant)},
	{Pattern: "/debts/:id", AllowedRoles: domain.NewRoleSet(domain.RoleAccountant)},
	{Pattern: "/sponsors", AllowedRoles: domain.NewRoleSet(domain.RoleAccountant)},
	{Pattern: "/sponsors/:id/loans", AllowedRoles: domain.NewRoleSet(domain.RoleAccountant)},
	{Pattern: "/expenses", AllowedRoles: domain.NewRoleSet(domain.RoleAccountant)},
	{Pattern: "/reports", AllowedRoles: domain.NewRoleSet(domain.RoleAccountant)},
	{Pattern: "/reports/:kind", AllowedRoles: domain.NewRoleSet(domain.RoleAccountant)},
}
