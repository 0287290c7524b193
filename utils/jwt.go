package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taller-inventory/config"
)

func secretKey() []byte {
	if s := config.App.JWTSecret; s != "" {
		return []byte(s)
	}
	return []byte("cambia-este-secreto")
}

func GenerateToken(userID uint, username string, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(12 * time.Hour).Unix(),
	})
	return token.SignedString(secretKey())
}

func VerifyToken(tokenString string) (jwt.MapClaims, error) {
	token, _ := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("metodo de firma no soportado")
		}
		return secretKey(), nil
	})

	if token != nil {
		if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
			return claims, nil
		}
	}
	return nil, errors.New("token invalido")
}
