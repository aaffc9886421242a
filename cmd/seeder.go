package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/stonelib/library-management/internal/core/datamodel"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the permission catalog and built-in roles",
	Long:  `Seed the database with the permission catalog, the built-in roles and the bootstrap admin account.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		seedPermissions(db)
		seedRoles(db)
		seedAdmin(db, cfg.Library.AdminEmail, cfg.Library.AdminPassword, cfg.Security.BCryptCost)
	},
}

type seedPermission struct {
	ID     int64
	Name   string
	Method string
	URL    string
}

// The permission catalog. URLs are regular expressions matched against
// the request path.
var permissionCatalog = []seedPermission{
	{1, "read_users", "GET", `^/api/users`},
	{2, "create_users", "POST", `^/api/users/?$`},
	{3, "update_users", "PUT", `^/api/users/\d+$`},
	{4, "delete_users", "DELETE", `^/api/users/\d+$`},
	{5, "assign_roles", "POST", `^/api/users/\d+/roles$`},
	{6, "read_roles", "GET", `^/api/roles`},
	{7, "create_roles", "POST", `^/api/roles/?$`},
	{8, "update_roles", "PUT", `^/api/roles/\d+$`},
	{9, "delete_roles", "DELETE", `^/api/roles/\d+$`},
	{10, "grant_permissions", "POST", `^/api/roles/\d+/permissions$`},
	{11, "revoke_permissions", "PUT", `^/api/roles/\d+/permissions$`},
	{12, "read_books", "GET", `^/api/books`},
	{13, "create_books", "POST", `^/api/books/?$`},
	{14, "update_books", "PUT", `^/api/books/\d+$`},
	{15, "delete_books", "DELETE", `^/api/books/\d+$`},
	{16, "validate_books", "PUT", `^/api/books/\d+/validate$`},
	{17, "reject_books", "POST", `^/api/books/\d+/reject$`},
	{18, "loan_books", "POST", `^/api/books/loan$`},
	{19, "return_books", "PUT", `^/api/books/return$`},
}

// The built-in roles and their grants. Admin gets every permission.
var roleGrants = map[int64][]int64{
	datamodel.RoleAdmin:  allPermissionIDs(),
	datamodel.RoleAuthor: {12, 13, 14},
	datamodel.RoleReader: {12, 18, 19},
}

var roleNames = map[int64]string{
	datamodel.RoleAdmin:  "admin",
	datamodel.RoleAuthor: "author",
	datamodel.RoleReader: "reader",
}

func allPermissionIDs() []int64 {
	ids := make([]int64, 0, len(permissionCatalog))
	for _, p := range permissionCatalog {
		ids = append(ids, p.ID)
	}
	return ids
}

func seedPermissions(db *gorm.DB) {
	for _, p := range permissionCatalog {
		err := db.Exec(
			`INSERT INTO permissions (id, name, method, url) VALUES (?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET name = ?, method = ?, url = ?`,
			p.ID, p.Name, p.Method, p.URL, p.Name, p.Method, p.URL,
		).Error
		if err != nil {
			log.Fatalf("failed to seed permission %s: %v", p.Name, err)
		}
	}
	bumpSequence(db, "permissions")
	fmt.Println("Seeded permission catalog")
}

// bumpSequence advances a table's id sequence past the explicitly
// inserted ids, so later inserts that rely on the sequence do not
// collide with seeded rows.
func bumpSequence(db *gorm.DB, table string) {
	err := db.Exec(
		fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))", table, table),
	).Error
	if err != nil {
		log.Fatalf("failed to advance %s id sequence: %v", table, err)
	}
}

func seedRoles(db *gorm.DB) {
	for id, name := range roleNames {
		err := db.Exec(
			`INSERT INTO roles (id, name) VALUES (?, ?)
			 ON CONFLICT (id) DO UPDATE SET name = ?`,
			id, name, name,
		).Error
		if err != nil {
			log.Fatalf("failed to seed role %s: %v", name, err)
		}

		for _, pid := range roleGrants[id] {
			err := db.Exec(
				"INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
				id, pid,
			).Error
			if err != nil {
				log.Fatalf("failed to grant permission %d to role %s: %v", pid, name, err)
			}
		}
	}
	bumpSequence(db, "roles")
	fmt.Println("Seeded built-in roles")
}

func seedAdmin(db *gorm.DB, email, password string, bcryptCost int) {
	if email == "" || password == "" {
		log.Fatal("admin_email and admin_password must be configured to seed the admin account")
	}

	var exists int64
	if err := db.Model(&datamodel.User{}).Where("email = ?", email).Count(&exists).Error; err != nil {
		log.Fatalf("failed to check for admin user: %v", err)
	}
	if exists > 0 {
		fmt.Println("Admin user already exists:", email)
		return
	}

	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	admin := datamodel.User{
		Firstname: "Library",
		Lastname:  "Admin",
		Email:     email,
		Password:  string(hash),
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("failed to insert admin user: %v", err)
	}
	err = db.Exec(
		"INSERT INTO user_roles (user_id, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		admin.ID, datamodel.RoleAdmin,
	).Error
	if err != nil {
		log.Fatalf("failed to grant admin role: %v", err)
	}

	fmt.Println("Seeded admin user:", email)
}
