package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view",
		"attempt:create",
		"attempt:save",
		"attempt:submit",
		"attempt:view-own",
	},
	"instructor": {
		"quiz:create",
		"quiz:edit",
		"quiz:delete",
		"quiz:view",
		"attempt:view-all",
		"attempt:grade",
		"rubric:view",
		"rubric:manage",
	},
	"admin": {
		"*", // everything
	},
}
