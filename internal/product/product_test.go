package product_test

import (
	"github.com/frahmantamala/bodega-inventory/internal/product"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = DescribeTable("Stock",
	func(quantity, minimum int, want product.StockStatus) {
		Expect(product.Stock(quantity, minimum)).To(Equal(want))
	},
	Entry("empty shelf", 0, 5, product.StockOut),
	Entry("empty shelf with no minimum", 0, 0, product.StockOut),
	Entry("below minimum", 3, 5, product.StockLow),
	Entry("at minimum", 5, 5, product.StockIn),
	Entry("above minimum", 9, 5, product.StockIn),
)
