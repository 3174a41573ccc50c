package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT,
		password_hash TEXT,
		role TEXT,
		account_status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createAssetTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE assets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		asset_type TEXT NOT NULL,
		platform_name TEXT,
		asset_name TEXT NOT NULL,
		category TEXT,
		notes TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE crypto_assets (
		id TEXT PRIMARY KEY,
		wallet_type TEXT NOT NULL,
		wallet_address TEXT NOT NULL,
		private_key_sealed TEXT,
		seed_phrase_sealed TEXT,
		balance_usd TEXT,
		balance_crypto TEXT,
		last_updated DATETIME
	);`)
}

func createBeneficiaryTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE beneficiaries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		email TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT,
		phone_number TEXT,
		relationship_type TEXT,
		priority_level INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'active',
		is_registered BOOLEAN DEFAULT 0,
		notification_sent BOOLEAN DEFAULT 0,
		access_token_hash TEXT UNIQUE,
		token_expires_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createAllocationTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE crypto_allocations (
		id TEXT PRIMARY KEY,
		crypto_asset_id TEXT NOT NULL,
		beneficiary_id TEXT NOT NULL,
		percentage TEXT NOT NULL,
		allocated_amount_usd TEXT NOT NULL DEFAULT '0',
		allocated_amount_crypto TEXT NOT NULL DEFAULT '0',
		disbursement_status TEXT NOT NULL DEFAULT 'pending',
		mock_transaction_id TEXT,
		disbursed_at DATETIME,
		created_at DATETIME
	);`)
}

func createVerificationTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE verification_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		beneficiary_id TEXT NOT NULL,
		requester_email TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		reviewed_by TEXT,
		reviewed_at DATETIME,
		rejection_reason TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE verification_documents (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		document_type TEXT NOT NULL,
		file_name TEXT NOT NULL,
		storage_path TEXT,
		verified BOOLEAN DEFAULT 0,
		uploaded_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE beneficiary_access_logs (
		id TEXT PRIMARY KEY,
		beneficiary_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		action TEXT NOT NULL,
		client_ip TEXT,
		created_at DATETIME
	);`)
}

func createMessageTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE user_messages (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		beneficiary_id TEXT,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		delivery_condition TEXT NOT NULL,
		scheduled_for DATETIME,
		delivered BOOLEAN NOT NULL DEFAULT 0,
		delivered_at DATETIME,
		created_at DATETIME
	);`)
}
