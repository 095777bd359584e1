package dto

// ==================== 请求 ====================

// RegisterRequest 注册请求（创建租户 + 面板用户）
type RegisterRequest struct {
	StoreName   string `json:"store_name" binding:"required"`
	Domain      string `json:"domain" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ==================== 响应 ====================

// UserVO 用户信息
type UserVO struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	StoreName string `json:"store_name"`
}

// AuthResponse 鉴权响应
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    UserVO `json:"user"`
}
