package rbac

// 权限常量
const (
	// 管理端权限
	PermissionViewDashboard = "dashboard:read"
	PermissionDeleteTask    = "task:delete"
	PermissionReplayOutbox  = "outbox:replay"

	// 普通用户权限
	PermissionSubmitTask = "task:submit"
)

// 角色常量
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleUser: {
		PermissionSubmitTask,
	},
	RoleAdmin: {
		PermissionViewDashboard,
		PermissionDeleteTask,
		PermissionReplayOutbox,
		PermissionSubmitTask,
	},
}

// HasPermission 检查角色是否有指定权限；未知角色没有任何权限
func HasPermission(role string, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission 检查权限（返回错误而不是布尔值，便于处理）
func CheckPermission(userID, role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			UserID:     userID,
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	UserID     string
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}

// ValidateUserIDInPath 验证路径中的 user_id 是否与 token 中的 user_id 匹配；
// 管理员可以代表任意用户操作
func ValidateUserIDInPath(tokenUserID, role, pathUserID string) error {
	if role == RoleAdmin || pathUserID == tokenUserID {
		return nil
	}
	return &UserIDMismatchError{
		TokenUserID: tokenUserID,
		PathUserID:  pathUserID,
	}
}

// UserIDMismatchError 表示 user_id 不匹配的错误
type UserIDMismatchError struct {
	TokenUserID string
	PathUserID  string
}

func (e *UserIDMismatchError) Error() string {
	return "user_id in path does not match token"
}
