package cmd

import (
	"context"

	"github.com/frahmantamala/fintrack/internal/auth"
	"github.com/frahmantamala/fintrack/internal/core/datamodel/category"
	userModel "github.com/frahmantamala/fintrack/internal/core/datamodel/user"
	"github.com/frahmantamala/fintrack/internal/core/testdb"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var _ = ginkgo.Describe("Seeder", func() {
	var (
		db  *gorm.DB
		ctx context.Context
	)

	ginkgo.BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		ctx = context.Background()
	})

	ginkgo.AfterEach(func() {
		gomega.Expect(testdb.Close(db)).To(gomega.Succeed())
	})

	ginkgo.It("should seed reference data with palette colors", func() {
		gomega.Expect(seedReferenceData(ctx, db)).To(gomega.Succeed())

		var travel category.Category
		gomega.Expect(db.Where("name = ?", "Travel").First(&travel).Error).To(gomega.Succeed())
		gomega.Expect(travel.Color).To(gomega.Equal("#EF4444"))
		gomega.Expect(travel.Icon).To(gomega.Equal("Plane"))

		var methods int64
		gomega.Expect(db.Model(&category.PaymentMethod{}).Count(&methods).Error).To(gomega.Succeed())
		gomega.Expect(methods).To(gomega.Equal(int64(len(paymentMethods))))
	})

	ginkgo.It("should be safe to run twice", func() {
		gomega.Expect(seedReferenceData(ctx, db)).To(gomega.Succeed())
		gomega.Expect(seedReferenceData(ctx, db)).To(gomega.Succeed())

		var categories int64
		gomega.Expect(db.Model(&category.Category{}).Count(&categories).Error).To(gomega.Succeed())
		gomega.Expect(categories).To(gomega.Equal(int64(len(categoryIcons))))
	})

	ginkgo.It("should create demo users once with a usable password", func() {
		gomega.Expect(seedUsers(ctx, db, "password123", bcrypt.MinCost)).To(gomega.Succeed())
		gomega.Expect(seedUsers(ctx, db, "password123", bcrypt.MinCost)).To(gomega.Succeed())

		var users []userModel.User
		gomega.Expect(db.Order("email").Find(&users).Error).To(gomega.Succeed())
		gomega.Expect(users).To(gomega.HaveLen(2))
		gomega.Expect(users[0].Role).To(gomega.Equal(userModel.RoleAdmin))
		gomega.Expect(auth.VerifyPassword(users[1].PasswordHash, "password123")).To(gomega.Succeed())
	})
})
