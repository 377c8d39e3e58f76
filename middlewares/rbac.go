package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	mongodbadapter "github.com/casbin/mongodb-adapter/v3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"voxarena/models"
)

// RBAC actions checked by route guards.
const (
	ActionRead     = "read"
	ActionWrite    = "write"
	ActionDelete   = "delete"
	ActionGenerate = "generate"
	ActionManage   = "manage"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// Editors author content but cannot delete it or manage configuration.
var defaultPolicies = [][]string{
	{models.AdminRoleAdmin, "*", "*"},
	{models.AdminRoleEditor, "*", ActionRead},
	{models.AdminRoleEditor, "*", ActionWrite},
	{models.AdminRoleEditor, "*", ActionGenerate},
}

// NewMongoEnforcer stores policies in the casbin_rule collection of the
// database named in uri.
func NewMongoEnforcer(uri string, log logrus.FieldLogger) (*casbin.Enforcer, error) {
	adapter, err := mongodbadapter.NewAdapter(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to create Casbin adapter: %w", err)
	}
	return NewEnforcer(adapter, log)
}

// NewEnforcer builds the enforcer from the inline model. A nil adapter keeps
// policies in memory.
func NewEnforcer(adapter persist.Adapter, log logrus.FieldLogger) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create Casbin model: %w", err)
	}

	var enforcer *casbin.Enforcer
	if adapter == nil {
		enforcer, err = casbin.NewEnforcer(m)
	} else {
		enforcer, err = casbin.NewEnforcer(m, adapter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Casbin enforcer: %w", err)
	}

	for _, p := range defaultPolicies {
		exists, err := enforcer.HasPolicy(p[0], p[1], p[2])
		if err != nil {
			return nil, fmt.Errorf("failed to check policy: %w", err)
		}
		if exists {
			continue
		}
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("failed to add policy: %w", err)
		}
		log.WithFields(logrus.Fields{"role": p[0], "resource": p[1], "action": p[2]}).Info("Added default policy")
	}
	return enforcer, nil
}

// RBAC checks if the admin's role may perform action on resource.
func RBAC(enforcer *casbin.Enforcer, resource, action string, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(AdminRoleKey)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin role not found"})
			return
		}

		allowed, err := enforcer.Enforce(role, resource, action)
		if err != nil {
			log.WithError(err).Error("Casbin enforce error")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Permission check failed"})
			return
		}
		if !allowed {
			log.WithFields(logrus.Fields{"role": role, "resource": resource, "action": action}).Warn("Permission denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

type AuditStore interface {
	Insert(ctx context.Context, l *models.AdminActionLog) error
}

// AuditTrail records every successful mutating request once the handler has run.
func AuditTrail(store AuditStore, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		action := c.Request.Method + " " + c.FullPath()
		if err := LogAdminAction(c, store, action, resourceType(c.FullPath()), c.Param("id"), nil); err != nil {
			log.WithError(err).WithField("action", action).Warn("Failed to record admin action")
		}
	}
}

// LogAdminAction logs an admin action for audit purposes
func LogAdminAction(c *gin.Context, store AuditStore, action, resourceType, resourceID string, details map[string]interface{}) error {
	email := c.GetString(AdminEmailKey)
	if email == "" {
		return fmt.Errorf("adminEmail not found in context")
	}

	userAgent := c.GetHeader("User-Agent")
	deviceInfo := "Desktop"
	if strings.Contains(userAgent, "Mobile") {
		deviceInfo = "Mobile"
	} else if strings.Contains(userAgent, "Tablet") {
		deviceInfo = "Tablet"
	}

	entry := &models.AdminActionLog{
		AdminID:      AdminID(c),
		AdminEmail:   email,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    c.ClientIP(),
		UserAgent:    userAgent,
		DeviceInfo:   deviceInfo,
		Timestamp:    time.Now(),
		Details:      details,
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 5*time.Second)
	defer cancel()
	return store.Insert(ctx, entry)
}

// resourceType maps "/api/debates/:id/generate" to "debates".
func resourceType(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) > 1 && parts[0] == "api" {
		return parts[1]
	}
	return parts[0]
}
