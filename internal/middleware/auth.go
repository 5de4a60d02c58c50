package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ContextUserID 已驗證使用者 ID 的 context key
	ContextUserID = "user_id"
	// ContextIsStaff 是否為工作人員
	ContextIsStaff = "is_staff"
)

// JWTAuth 驗證 Bearer token 並把 sub / is_staff claim 放入 gin context
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid claims"})
			return
		}

		// sub 是數字型 claim，JSON 解析後為 float64
		sub, ok := claims["sub"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid claims"})
			return
		}
		isStaff, _ := claims["is_staff"].(bool)

		c.Set(ContextUserID, int(sub))
		c.Set(ContextIsStaff, isStaff)
		c.Next()
	}
}

// RequireStaff 僅允許工作人員通過，須接在 JWTAuth 之後
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsStaff) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			return
		}
		c.Next()
	}
}

// CurrentUserID 取出 JWTAuth 寫入的使用者 ID
func CurrentUserID(c *gin.Context) int {
	return c.GetInt(ContextUserID)
}

// NewToken 簽發 HS256 token，測試與工具使用
func NewToken(secret string, userID int, isStaff bool, expUnix int64) (string, error) {
	claims := jwt.MapClaims{
		"sub":      userID,
		"is_staff": isStaff,
		"exp":      expUnix,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
