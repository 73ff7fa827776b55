package handlers

import (
	"errors"
	"net/http"

	"mediaalbums/auth"
	"mediaalbums/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type UserLoginRequest struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type UserInfo struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Permissions []int  `json:"permissions"`
}

func NewUserInfo(u *models.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Permissions: u.GetPermissions(),
	}
}

func (a *API) UserLogin(c *gin.Context) {
	req := UserLoginRequest{}
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		WriteError(c, BindErrors(err))
		return
	}
	user, err := models.UserLogin(a.DB, req.Email, req.Password)
	if errors.Is(err, models.ErrInvalidLogin) {
		c.JSON(http.StatusUnauthorized, InvalidLoginResponse)
		return
	}
	if err != nil {
		WriteError(c, err)
		return
	}
	if err := auth.LoadSession(c).LoginUser(&user); err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewUserInfo(&user))
}

func (a *API) UserLogout(c *gin.Context) {
	auth.LoadSession(c).LogoutUser()
	c.JSON(http.StatusOK, OKResponse)
}

func (a *API) UserStatus(c *gin.Context, user *models.User) {
	c.JSON(http.StatusOK, NewUserInfo(user))
}

// Register adds the operator endpoints to r
func (a *API) Register(r gin.IRoutes) {
	r.POST("/user/login", a.UserLogin)
	r.POST("/user/logout", a.UserLogout)

	router := &auth.Router{Base: r}
	router.GET("/user/status", a.UserStatus)

	router.GET("/admin/albums", a.AlbumList, models.PermissionStaff)
	router.POST("/admin/albums", a.AlbumCreate, models.PermissionStaff)
	router.GET("/admin/albums/:id", a.AlbumGet, models.PermissionStaff)
	router.POST("/admin/albums/:id", a.AlbumUpdate, models.PermissionStaff)
	router.DELETE("/admin/albums/:id", a.AlbumDelete, models.PermissionStaff)

	router.POST("/admin/items/:kind", a.ItemCreate, models.PermissionStaff)
	router.GET("/admin/items/:kind/:id", a.ItemGet, models.PermissionStaff)
	router.POST("/admin/items/:kind/:id", a.ItemUpdate, models.PermissionStaff)
	router.DELETE("/admin/items/:kind/:id", a.ItemDelete, models.PermissionStaff)

	router.GET("/admin/pending", a.PendingList, models.PermissionStaff)
	router.POST("/admin/pending/approve", a.PendingApprove, models.PermissionStaff)
	router.DELETE("/admin/pending/:id", a.PendingDiscard, models.PermissionStaff)
}
