package user

import "bytes"

// plainPasswordHandler stores passwords without hashing them.
type plainPasswordHandler struct {
	hashErr error
}

func (m plainPasswordHandler) Hash(password string) ([]byte, error) {
	return []byte(password), m.hashErr
}

func (m plainPasswordHandler) IsCorrect(hashedPassword []byte, password string) (bool, error) {
	return bytes.Equal(hashedPassword, []byte(password)), nil
}
