package model

// User 用户表 — 对应 users
// 面板登录使用 Username + PasswordHash；
// TFUsername / TFPassword 是存给报名引擎使用的 TalkFirst 选课凭据
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string  `gorm:"type:text;not null;uniqueIndex"                 json:"username"`
	PasswordHash string  `gorm:"type:text;not null"                             json:"-"`
	TFUsername   *string `gorm:"column:tf_username;type:text"                   json:"tf_username,omitempty"`
	TFPassword   *string `gorm:"column:tf_password;type:text"                   json:"-"`
	BaseModel
}

func (User) TableName() string { return "users" }
