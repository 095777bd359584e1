package controller

import (
	"errors"
	"log"
	"net/http"

	"shopify_dash_v1_202601/internal/api/dto"
	"shopify_dash_v1_202601/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authSvc *service.AuthService
}

func NewAuthController(authSvc *service.AuthService) *AuthController {
	return &AuthController{authSvc: authSvc}
}

// Register 注册店铺与管理账号
// @Summary 注册店铺
// @Description 验证店铺凭证后创建租户与面板用户，注册 webhook 并后台触发首次全量导入
// @Tags Auth (认证模块)
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.AuthResponse "注册成功"
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 401 {object} map[string]string "店铺凭证无效"
// @Failure 409 {object} map[string]string "邮箱已被注册"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.authSvc.Register(ctx.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidCredential):
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			log.Printf("[AuthController] 注册失败: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, resp)
}

// Login 登录
// @Summary 登录
// @Description 邮箱密码登录，返回携带店铺租户信息的 Token
// @Tags Auth (认证模块)
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.AuthResponse "登录成功"
// @Failure 401 {object} map[string]string "邮箱或密码错误"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.authSvc.Login(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLogin) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[AuthController] 登录失败: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "登录失败"})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
