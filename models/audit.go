package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminActionLog is an audit record of a write performed through the API.
type AdminActionLog struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	AdminID      primitive.ObjectID     `bson:"adminId" json:"adminId"`
	AdminEmail   string                 `bson:"adminEmail" json:"adminEmail"`
	Action       string                 `bson:"action" json:"action"`
	ResourceType string                 `bson:"resourceType" json:"resourceType"`
	ResourceID   string                 `bson:"resourceId,omitempty" json:"resourceId,omitempty"`
	IPAddress    string                 `bson:"ipAddress" json:"ipAddress"`
	UserAgent    string                 `bson:"userAgent" json:"userAgent"`
	DeviceInfo   string                 `bson:"deviceInfo" json:"deviceInfo"`
	Timestamp    time.Time              `bson:"timestamp" json:"timestamp"`
	Details      map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
}
