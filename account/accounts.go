package account

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"annoflow/authority"
	"annoflow/bizerror"
	"annoflow/idgen"
	"annoflow/persistence"
	"annoflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateUserFunc   = CreateUser
	BanUserFunc      = BanUser
	UnbanUserFunc    = UnbanUser
	CreditPointsFunc = CreditPoints
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func CreateUser(c *UserCreation, sec *session.Context) (*UserInfo, error) {
	if !sec.HasCapability(authority.ManageAccounts) {
		return nil, bizerror.ErrForbidden
	}
	if !c.Role.IsValid() {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("unknown role '" + string(c.Role) + "'")}
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname,
		Secret: HashSha256(c.Secret), Role: c.Role}
	if err := persistence.ActiveDataSourceManager.GormDB().Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Role: user.Role}, nil
}

func QueryUsers(sec *session.Context) (*[]UserInfo, error) {
	if !sec.HasCapability(authority.ManageAccounts) {
		return nil, bizerror.ErrForbidden
	}
	var users []UserInfo
	if err := persistence.ActiveDataSourceManager.GormDB().Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

// BanUser marks a worker or publisher account banned. Banned workers can no
// longer claim subtasks; admins cannot be banned.
func BanUser(userId types.ID, sec *session.Context) error {
	return setBanned(userId, true, sec)
}

func UnbanUser(userId types.ID, sec *session.Context) error {
	return setBanned(userId, false, sec)
}

func setBanned(userId types.ID, banned bool, sec *session.Context) error {
	if !sec.HasCapability(authority.ManageAccounts) {
		return bizerror.ErrForbidden
	}
	return persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		user := User{ID: userId}
		if err := tx.Where(&user).First(&user).Error; err != nil {
			return err
		}
		if user.Role == authority.RoleAdmin {
			return bizerror.ErrForbidden
		}
		return tx.Model(&User{ID: userId}).Update(map[string]interface{}{"banned": banned}).Error
	})
}

// CreditPoints increments a user's point balance. The lifecycle engine only
// ever increments from this surface.
func CreditPoints(userId types.ID, points int, sec *session.Context) error {
	if !sec.HasCapability(authority.ManageAccounts) {
		return bizerror.ErrForbidden
	}
	if points <= 0 {
		return &bizerror.ErrBadParam{Cause: errors.New("points must be positive")}
	}
	return persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		user := User{ID: userId}
		if err := tx.Where(&user).First(&user).Error; err != nil {
			return err
		}
		return tx.Model(&User{ID: userId}).Update("points", gorm.Expr("points + ?", points)).Error
	})
}

func QueryAccountNames(ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB()
	var records []User
	if err := db.Model(&User{}).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}
