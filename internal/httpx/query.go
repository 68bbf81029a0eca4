package httpx

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/ordenes-checkout/internal/listing"
)

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return n
}

// PageFromQuery reads ?page= and ?limit=; bad values fall back to defaults.
func PageFromQuery(c *gin.Context) listing.Page {
	return listing.Page{Page: queryInt(c, "page"), Limit: queryInt(c, "limit")}.Normalize()
}

// SortFromQuery reads ?sortField= and ?sortOrder=.
func SortFromQuery(c *gin.Context) listing.Sort {
	return listing.ParseSort(c.Query("sortField"), c.Query("sortOrder"))
}
