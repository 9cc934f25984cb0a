package category_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/bodega-inventory/internal/category"
	categoryPostgres "github.com/frahmantamala/bodega-inventory/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/category"
	productDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/product"
	"github.com/frahmantamala/bodega-inventory/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *category.Handler
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&categoryDatamodel.Category{}, &productDatamodel.Product{})).To(Succeed())

		service := category.NewService(categoryPostgres.NewCategoryRepository(db), logger.Discard())
		handler = category.NewHandler(service, logger.Discard())

		tools := &categoryDatamodel.Category{Name: "Herramientas", Description: "Tools"}
		paint := &categoryDatamodel.Category{Name: "Pinturas", Description: "Paint"}
		Expect(db.Create(tools).Error).To(Succeed())
		Expect(db.Create(paint).Error).To(Succeed())

		for _, p := range []*productDatamodel.Product{
			{Name: "Martillo", CategoryID: &tools.ID, Quantity: 2, MinimumStock: 5},
			{Name: "Sierra", CategoryID: &tools.ID, Quantity: 10, MinimumStock: 5},
		} {
			Expect(db.Create(p).Error).To(Succeed())
		}
	})

	It("should handle GET /api/categories request successfully", func() {
		w := httptest.NewRecorder()
		handler.GetCategories(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response struct {
			Success bool                 `json:"success"`
			Data    []*category.Category `json:"data"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Success).To(BeTrue())
		Expect(response.Data).To(HaveLen(2))
		Expect(response.Data[0].Name).To(Equal("Herramientas"))
	})

	It("should count products per category including empty ones", func() {
		w := httptest.NewRecorder()
		handler.GetStats(w, httptest.NewRequest(http.MethodGet, "/api/categories/stats", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		var response struct {
			Data []category.CategoryStat `json:"data"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Data).To(Equal([]category.CategoryStat{
			{ID: 1, Name: "Herramientas", ProductCount: 2, TotalQuantity: 12, LowStock: 1},
			{ID: 2, Name: "Pinturas", ProductCount: 0, TotalQuantity: 0, LowStock: 0},
		}))
	})
})
