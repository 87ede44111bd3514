package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// TransactionEnricher annotates the active New Relic transaction with the
// request's resource identifier and reports handler failures to APM. It runs
// after nrgin.Middleware, which owns the transaction lifecycle.
func TransactionEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		txn := nrgin.Transaction(c)
		if txn == nil {
			return
		}

		if id := c.Param("id"); id != "" {
			txn.AddAttribute("resourceId", id)
		}

		// Client errors are expected outcomes; only server failures are
		// noticed as errors.
		if c.Writer.Status() >= http.StatusInternalServerError {
			for _, ginErr := range c.Errors {
				txn.NoticeError(ginErr.Err)
			}
		}
	}
}
