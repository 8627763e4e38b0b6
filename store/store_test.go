package store

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reachly/models"
)

// newTestStore opens an in-memory database with the full schema, so the
// eligibility SQL and the ledger's guarded updates run against a real
// query engine instead of a fake.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Campaign{},
		&models.Contact{},
		&models.Template{},
		&models.FollowUpRule{},
		&models.SentMessage{},
	)
	if err != nil {
		t.Fatalf("migrating test schema: %v", err)
	}
	return New(db)
}

func seedCampaign(t *testing.T, s *Store, status models.CampaignStatus) *models.Campaign {
	t.Helper()
	campaign := &models.Campaign{UserID: 1, Name: "launch", Status: status}
	if err := s.db.Create(campaign).Error; err != nil {
		t.Fatalf("seeding campaign: %v", err)
	}
	return campaign
}

func seedContact(t *testing.T, s *Store, campaignID uint, email string, unsubscribed bool) *models.Contact {
	t.Helper()
	contact := &models.Contact{
		CampaignID:   campaignID,
		Email:        email,
		FirstName:    "Ada",
		Unsubscribed: unsubscribed,
	}
	if err := s.db.Create(contact).Error; err != nil {
		t.Fatalf("seeding contact %s: %v", email, err)
	}
	return contact
}

func seedMessage(t *testing.T, s *Store, msg *models.SentMessage) *models.SentMessage {
	t.Helper()
	if msg.Subject == "" {
		msg.Subject = "hello"
	}
	if msg.Body == "" {
		msg.Body = "<body>hi</body>"
	}
	if err := s.db.Create(msg).Error; err != nil {
		t.Fatalf("seeding message: %v", err)
	}
	return msg
}

func reloadMessage(t *testing.T, s *Store, id uint) *models.SentMessage {
	t.Helper()
	var msg models.SentMessage
	if err := s.db.First(&msg, id).Error; err != nil {
		t.Fatalf("reloading message %d: %v", id, err)
	}
	return &msg
}
