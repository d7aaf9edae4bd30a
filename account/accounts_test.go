package account_test

import (
	"annoflow/account"
	"annoflow/authority"
	"annoflow/bizerror"
	"annoflow/persistence"
	"annoflow/testinfra"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func accountTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("annoflow")
	*testDatabase = db
	Expect(db.DS.GormDB().AutoMigrate(&account.User{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
}

func accountTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestCreateUser(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should only let account managers create users", func(t *testing.T) {
		defer accountTestTeardown(t, testDatabase)
		accountTestSetup(t, &testDatabase)

		creation := account.UserCreation{Name: "ann", Secret: "123456", Role: authority.RoleWorker}
		info, err := account.CreateUser(&creation, nil)
		Expect(err).To(Equal(bizerror.ErrForbidden))
		Expect(info).To(BeNil())

		info, err = account.CreateUser(&creation, testinfra.BuildSecCtx(1, authority.RolePublisher))
		Expect(err).To(Equal(bizerror.ErrForbidden))
		Expect(info).To(BeNil())
	})

	t.Run("should store users with hashed secret and a known role", func(t *testing.T) {
		defer accountTestTeardown(t, testDatabase)
		accountTestSetup(t, &testDatabase)
		db := testDatabase.DS.GormDB()
		admin := testinfra.BuildSecCtx(999, authority.RoleAdmin)

		info, err := account.CreateUser(&account.UserCreation{
			Name: "ann", Nickname: "Ann", Secret: "123456", Role: authority.RoleWorker}, admin)
		Expect(err).To(BeNil())
		Expect(info.Name).To(Equal("ann"))
		Expect(info.Role).To(Equal(authority.RoleWorker))

		stored := account.User{ID: info.ID}
		Expect(db.Where(&stored).First(&stored).Error).To(BeNil())
		Expect(stored.Secret).To(Equal(account.HashSha256("123456")))
		Expect(stored.Banned).To(BeFalse())
		Expect(stored.Points).To(BeZero())

		// unknown role is refused
		info, err = account.CreateUser(&account.UserCreation{
			Name: "bob", Secret: "123456", Role: authority.Role("GUEST")}, admin)
		_, isBadParam := err.(*bizerror.ErrBadParam)
		Expect(isBadParam).To(BeTrue())
		Expect(info).To(BeNil())

		// user name is unique
		_, err = account.CreateUser(&account.UserCreation{
			Name: "ann", Secret: "abcdef", Role: authority.RoleWorker}, admin)
		Expect(err).ToNot(BeNil())
	})
}

func TestBanUser(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should ban and unban non-admin users", func(t *testing.T) {
		defer accountTestTeardown(t, testDatabase)
		accountTestSetup(t, &testDatabase)
		db := testDatabase.DS.GormDB()
		admin := testinfra.BuildSecCtx(999, authority.RoleAdmin)

		worker := account.User{ID: 10, Name: "ann", Secret: "123", Role: authority.RoleWorker}
		Expect(db.Save(&worker).Error).To(BeNil())

		Expect(account.BanUser(10, testinfra.BuildSecCtx(1, authority.RolePublisher))).
			To(Equal(bizerror.ErrForbidden))

		Expect(account.BanUser(10, admin)).To(BeNil())
		stored := account.User{ID: 10}
		Expect(db.Where(&account.User{ID: 10}).First(&stored).Error).To(BeNil())
		Expect(stored.Banned).To(BeTrue())

		Expect(account.UnbanUser(10, admin)).To(BeNil())
		stored = account.User{ID: 10}
		Expect(db.Where(&account.User{ID: 10}).First(&stored).Error).To(BeNil())
		Expect(stored.Banned).To(BeFalse())

		Expect(account.BanUser(404, admin)).To(Equal(gorm.ErrRecordNotFound))
	})

	t.Run("should refuse banning an admin", func(t *testing.T) {
		defer accountTestTeardown(t, testDatabase)
		accountTestSetup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		other := account.User{ID: 20, Name: "root2", Secret: "123", Role: authority.RoleAdmin}
		Expect(db.Save(&other).Error).To(BeNil())

		Expect(account.BanUser(20, testinfra.BuildSecCtx(999, authority.RoleAdmin))).
			To(Equal(bizerror.ErrForbidden))
	})
}

func TestCreditPoints(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should increment the balance by a positive amount only", func(t *testing.T) {
		defer accountTestTeardown(t, testDatabase)
		accountTestSetup(t, &testDatabase)
		db := testDatabase.DS.GormDB()
		admin := testinfra.BuildSecCtx(999, authority.RoleAdmin)

		worker := account.User{ID: 10, Name: "ann", Secret: "123", Role: authority.RoleWorker, Points: 3}
		Expect(db.Save(&worker).Error).To(BeNil())

		Expect(account.CreditPoints(10, 5, testinfra.BuildSecCtx(1, authority.RolePublisher))).
			To(Equal(bizerror.ErrForbidden))

		err := account.CreditPoints(10, 0, admin)
		_, isBadParam := err.(*bizerror.ErrBadParam)
		Expect(isBadParam).To(BeTrue())
		err = account.CreditPoints(10, -5, admin)
		_, isBadParam = err.(*bizerror.ErrBadParam)
		Expect(isBadParam).To(BeTrue())

		Expect(account.CreditPoints(10, 5, admin)).To(BeNil())
		Expect(account.CreditPoints(10, 2, admin)).To(BeNil())

		stored := account.User{ID: 10}
		Expect(db.Where(&account.User{ID: 10}).First(&stored).Error).To(BeNil())
		Expect(stored.Points).To(Equal(10))

		Expect(account.CreditPoints(404, 5, admin)).To(Equal(gorm.ErrRecordNotFound))
	})
}

func TestQueryAccountNames(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should prefer nicknames and skip unknown ids", func(t *testing.T) {
		defer accountTestTeardown(t, testDatabase)
		accountTestSetup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		Expect(db.Save(&account.User{ID: 10, Name: "ann", Nickname: "Ann", Secret: "123",
			Role: authority.RoleWorker}).Error).To(BeNil())
		Expect(db.Save(&account.User{ID: 11, Name: "bob", Secret: "123",
			Role: authority.RoleWorker}).Error).To(BeNil())

		names, err := account.QueryAccountNames([]types.ID{10, 11, 404})
		Expect(err).To(BeNil())
		Expect(names).To(Equal(map[types.ID]string{10: "Ann", 11: "bob"}))

		names, err = account.QueryAccountNames(nil)
		Expect(err).To(BeNil())
		Expect(names).To(Equal(map[types.ID]string{}))
	})
}
