package user

import "errors"

// RuleError 业务规则校验失败，Error() 即面向用户的提示文案
type RuleError struct {
	msg string
}

func (e *RuleError) Error() string { return e.msg }

func ruleError(msg string) *RuleError { return &RuleError{msg: msg} }

var (
	ErrNotFound        = errors.New("user: not found")
	ErrInvalidPassword = errors.New("user: invalid credentials")

	ErrCredentialsRequired   = ruleError("用户名和密码不能为空")
	ErrUsernameExists        = ruleError("用户名已存在")
	ErrPasswordRequired      = ruleError("密码不能为空")
	ErrOldPasswordMismatch   = ruleError("原密码错误")
	ErrResetParamsIncomplete = ruleError("参数不完整")
	ErrSuperAdminImmutable   = ruleError("无法修改超级管理员")
	ErrSuperAdminRoleLocked  = ruleError("无法修改超级管理员角色")
	ErrAdminOnlyUsers        = ruleError("管理员只能修改使用者权限")
	ErrAdminGrantSuper       = ruleError("管理员不能设置超级管理员权限")
	ErrIllegalRole           = ruleError("非法的权限变更")
	ErrSuperOnlySelf         = ruleError("只能将自己设置为超级管理员")
	ErrSuperAdminUndeletable = ruleError("无法删除超级管理员")
	ErrAdminDeleteAdmin      = ruleError("管理员不能删除管理员或超级管理员")

	// ErrResetTokenInvalid 重置令牌不匹配或服务端未配置令牌
	ErrResetTokenInvalid = errors.New("重置令牌无效")
)

// IsRuleError 判断是否为规则校验错误
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
