package cache

import "fmt"

// Key builders for the cache namespaces shared by handlers and jobs. Keeping
// them here means invalidation sweeps and writers cannot drift apart.

func ProductKey(productID string) string {
	return "product:" + productID
}

func ProductListPattern() string {
	return "products:list:*"
}

func CategoryPattern(categoryID string) string {
	return fmt.Sprintf("category:%s:*", categoryID)
}

func ColourPattern(colour string) string {
	return fmt.Sprintf("colour:%s:*", colour)
}

func PricingRulesKey() string {
	return "pricing:rules"
}

func LowStockAlertKey(productID string) string {
	return "alerts:lowstock:" + productID
}

func OutOfStockAlertKey(productID string) string {
	return "alerts:outofstock:" + productID
}

func SearchDocKey(productID string) string {
	return "search:product:" + productID
}

func SearchTermKey(term string) string {
	return "search:term:" + term
}

func SearchMetaKey(facet string) string {
	return "search:meta:" + facet
}

func SearchPattern() string {
	return "search:*"
}

func RunReportKey(job string, unixMillis int64) string {
	return fmt.Sprintf("jobs:report:%s:%d", job, unixMillis)
}

func RunReportIndexKey(job string) string {
	return "jobs:report:index:" + job
}
