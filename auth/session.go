package auth

import (
	"mediaalbums/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	userIdKey  = "id"
	contextKey = "auth.user"
)

type Session struct {
	sessions.Session
}

func LoadSession(c *gin.Context) *Session {
	return &Session{
		Session: sessions.Default(c),
	}
}

func (s *Session) LoginUser(user *models.User) error {
	s.Set(userIdKey, user.ID)
	return s.Save()
}

func (s *Session) LogoutUser() {
	s.Delete(userIdKey)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	s.Save()
}

func (s *Session) User(db *gorm.DB) (user models.User) {
	id, ok := s.Get(userIdKey).(uint64)
	if !ok || id == 0 {
		return
	}
	return models.UserByID(db, id)
}

// WithUser loads the session user (possibly anonymous) for every request
func WithUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetUser(c, LoadSession(c).User(db))
		c.Next()
	}
}

func SetUser(c *gin.Context, user models.User) {
	c.Set(contextKey, user)
}

// UserFrom returns the user loaded by WithUser, anonymous when there is none
func UserFrom(c *gin.Context) models.User {
	if v, ok := c.Get(contextKey); ok {
		if user, ok := v.(models.User); ok {
			return user
		}
	}
	return models.User{}
}
