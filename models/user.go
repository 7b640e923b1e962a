package models

type Role string

const (
	RoleUser       Role = "USER"
	RoleMusician   Role = "MUSICIAN"
	RoleVocalist   Role = "VOCALIST"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// Caller is the authenticated identity attached to a request.
type Caller struct {
	ID   string
	Role Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleSuperAdmin
}

// User is the directory record the booking core reads for customers and providers.
type User struct {
	ID               string `bson:"id" json:"id"`
	Name             string `bson:"name" json:"name"`
	Email            string `bson:"email" json:"email"`
	Role             Role   `bson:"role" json:"role"`
	CustomerID       string `bson:"customerId,omitempty" json:"-"`       // gateway customer
	ConnectAccountID string `bson:"connectAccountId,omitempty" json:"-"` // payout destination
	FCMToken         string `bson:"fcmToken,omitempty" json:"-"`
}
