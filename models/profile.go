// file: models/profile.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// StaffRole 自定义员工角色类型
type StaffRole string

const (
	RolePresident     StaffRole = "PRESIDENT"
	RoleVicePresident StaffRole = "VICE_PRESIDENT"
	RoleFinance       StaffRole = "FINANCE"
	RoleSocial        StaffRole = "SOCIAL"
	RoleOutreach      StaffRole = "OUTREACH"
	RoleAdvisor       StaffRole = "ADVISOR"
	RoleLogistics     StaffRole = "LOGISTICS"
)

// AllRoles lists every staff role.
var AllRoles = []StaffRole{RolePresident, RoleVicePresident, RoleFinance, RoleSocial, RoleOutreach, RoleAdvisor, RoleLogistics}

// Valid reports whether r is a known role.
func (r StaffRole) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Profile is a staff account that can sign in to the dashboard.
type Profile struct {
	ID        uint32    `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	FirstName string    `gorm:"column:firstname;size:50" json:"firstname"`
	LastName  string    `gorm:"column:lastname;size:50" json:"lastname"`
	Role      StaffRole `gorm:"size:20;not null;default:'LOGISTICS'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// HashPassword returns the bcrypt hash stored in Profile.Password.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// BeforeCreate GORM Hook，在创建前自动哈希密码
func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	p.Password, err = HashPassword(p.Password)
	return
}

// CheckPassword 校验密码是否正确
func (p *Profile) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(password))
	return err == nil
}
