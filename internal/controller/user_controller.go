package controller

import (
	"designhub_backend/internal/model"
	"designhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct{}

func NewUserController() *UserController {
	return &UserController{}
}

// @Summary Current learner
// @Description Identity carried by the verified bearer token
// @Tags Users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User}
// @Failure 401 {object} util.Response
// @Router /me [get]
func (c *UserController) Me(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}
	util.Success(ctx, model.User{
		ID:    sess.UserID,
		Email: sess.Email,
		Role:  sess.Role,
	})
}
