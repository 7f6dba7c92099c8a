package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword は平文パスワードをbcryptでハッシュ化します。
// 保存前に一度だけ呼び出し、以後は平文を保持しません。
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword は平文パスワードとハッシュを照合します。
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
