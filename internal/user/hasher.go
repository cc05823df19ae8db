package user

import "golang.org/x/crypto/bcrypt"

// PasswordHasher 密码哈希抽象，便于测试替换
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// BcryptHasher bcrypt 实现
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher 默认 cost 10
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{Cost: 10}
}

// Hash 生成密码哈希
func (h *BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare 校验密码
func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
