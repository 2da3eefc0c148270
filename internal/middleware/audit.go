package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	reqidmiddleware "github.com/noah-isme/student-roster/pkg/middleware/requestid"
)

const auditStudentIDsKey = "audit_student_ids"

// SetAuditStudentIDs names the students a handler changed, for requests whose
// path carries no id.
func SetAuditStudentIDs(c *gin.Context, ids ...string) {
	c.Set(auditStudentIDsKey, ids)
}

// Audit records successful roster mutations on the audit logger.
func Audit(logr *zap.Logger, action string) gin.HandlerFunc {
	if logr == nil {
		logr = zap.NewNop()
	}
	logr = logr.Named("audit")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", reqidmiddleware.Value(c)),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
			zap.Strings("student_ids", auditStudentIDs(c)),
		}
		logr.Info("roster mutation", fields...)
	}
}

func auditStudentIDs(c *gin.Context) []string {
	if v, ok := c.Get(auditStudentIDsKey); ok {
		if ids, ok := v.([]string); ok {
			return ids
		}
	}
	if id := c.Param("id"); id != "" {
		return []string{id}
	}
	return nil
}
