package product_test

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/bodega-inventory/internal"
	categoryDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/category"
	"github.com/frahmantamala/bodega-inventory/internal/product"
	productPostgres "github.com/frahmantamala/bodega-inventory/internal/product/postgres"
	"github.com/frahmantamala/bodega-inventory/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Product Service", func() {
	var (
		db      *gorm.DB
		service *product.Service
		ctx     context.Context
		tools   *categoryDatamodel.Category
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = newTestDB()
		service = product.NewService(productPostgres.NewProductRepository(db), logger.Discard())

		tools = &categoryDatamodel.Category{Name: "Herramientas", Description: "Tools"}
		Expect(db.Create(tools).Error).To(Succeed())
	})

	create := func(name string, qty, min int) *product.Product {
		p, err := service.Create(ctx, product.ProductDTO{
			Name: name, CategoryID: int64Ptr(tools.ID), Quantity: intPtr(qty), MinimumStock: intPtr(min), Location: "A-1",
		})
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	Describe("Create", func() {
		It("returns the stored product with its category and status", func() {
			p := create("Martillo", 2, 5)
			Expect(p.ID).To(BeNumerically(">", 0))
			Expect(p.CategoryName).NotTo(BeNil())
			Expect(*p.CategoryName).To(Equal("Herramientas"))
			Expect(p.Status).To(Equal(product.StockLow))
		})

		It("accepts an explicit zero quantity", func() {
			p := create("Clavos", 0, 10)
			Expect(p.Status).To(Equal(product.StockOut))
		})

		It("accepts a product without category", func() {
			p, err := service.Create(ctx, product.ProductDTO{Name: "Suelto", Quantity: intPtr(1), MinimumStock: intPtr(0)})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.CategoryID).To(BeNil())
			Expect(p.CategoryName).To(BeNil())
		})

		It("rejects a missing quantity", func() {
			_, err := service.Create(ctx, product.ProductDTO{Name: "X", MinimumStock: intPtr(1)})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("quantity is required"))
		})

		It("rejects a negative quantity with its own code", func() {
			_, err := service.Create(ctx, product.ProductDTO{Name: "X", Quantity: intPtr(-1), MinimumStock: intPtr(1)})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidQuantity)))
		})

		It("rejects an unknown category", func() {
			_, err := service.Create(ctx, product.ProductDTO{Name: "X", CategoryID: int64Ptr(999), Quantity: intPtr(1), MinimumStock: intPtr(1)})
			Expect(err).To(MatchError(product.ErrCategoryNotFound))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			create("Martillo", 2, 5)
			create("Destornillador", 10, 5)
			create("Sierra 50%", 0, 1)
		})

		It("returns everything ordered by name", func() {
			products, err := service.List(ctx, product.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(3))
			Expect(products[0].Name).To(Equal("Destornillador"))
		})

		It("filters case-insensitively", func() {
			products, err := service.List(ctx, product.ListFilter{Search: "MART"})
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(1))
			Expect(products[0].Name).To(Equal("Martillo"))
		})

		It("treats wildcard characters literally", func() {
			products, err := service.List(ctx, product.ListFilter{Search: "%"})
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(1))
			Expect(products[0].Name).To(Equal("Sierra 50%"))
		})

		It("lists low stock items", func() {
			products, err := service.LowStock(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(2))
			Expect(products[0].Quantity).To(Equal(0))
		})
	})

	Describe("Update and Delete", func() {
		It("updates fields", func() {
			p := create("Martillo", 2, 5)
			updated, err := service.Update(ctx, p.ID, product.ProductDTO{Name: "Martillo XL", Quantity: intPtr(8), MinimumStock: intPtr(5)})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Martillo XL"))
			Expect(updated.Status).To(Equal(product.StockIn))
			Expect(updated.CategoryID).To(BeNil())
		})

		It("returns not found for unknown ids", func() {
			_, err := service.Update(ctx, 404, product.ProductDTO{Name: "X", Quantity: intPtr(1), MinimumStock: intPtr(1)})
			Expect(err).To(MatchError(product.ErrNotFound))
			Expect(service.Delete(ctx, 404)).To(MatchError(product.ErrNotFound))
			_, err = service.Get(ctx, 404)
			Expect(err).To(MatchError(product.ErrNotFound))
		})

		It("deletes", func() {
			p := create("Martillo", 2, 5)
			Expect(service.Delete(ctx, p.ID)).To(Succeed())
			_, err := service.Get(ctx, p.ID)
			Expect(err).To(MatchError(product.ErrNotFound))
		})
	})

	Describe("Stats", func() {
		It("counts products, low stock and categories", func() {
			create("Martillo", 2, 5)
			create("Destornillador", 10, 5)

			stats, err := service.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(*stats).To(Equal(product.InventoryStats{TotalProducts: 2, LowStock: 1, Categories: 1}))
		})
	})
})
