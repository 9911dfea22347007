package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewManager(t *testing.T) {
	tmpDir := t.TempDir()

	manager, err := NewManager(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	if manager.db == nil {
		t.Error("Database connection is nil")
	}

	// Verify database file was created
	dbPath := filepath.Join(tmpDir, "cachereport.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestNewManager_EmptyDir(t *testing.T) {
	_, err := NewManager("")
	if err == nil {
		t.Error("Expected error for empty directory, got nil")
	}
}

func TestSaveAndGetPass(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	record := PassRecord{
		RunID:        "run-1234",
		RSE:          "EDGE_CACHE",
		StartTime:    time.Now().Add(-10 * time.Minute),
		EndTime:      time.Now(),
		Status:       StatusSuccess,
		Scanned:      250,
		Reported:     240,
		Bad:          3,
		Unregistered: 7,
	}

	if err := manager.SavePass(record); err != nil {
		t.Fatalf("Failed to save pass: %v", err)
	}

	history, err := manager.GetHistory("EDGE_CACHE", 10)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(history))
	}

	retrieved := history[0]
	if retrieved.RunID != record.RunID {
		t.Errorf("Expected run id %s, got %s", record.RunID, retrieved.RunID)
	}
	if retrieved.Status != record.Status {
		t.Errorf("Expected status %s, got %s", record.Status, retrieved.Status)
	}
	if retrieved.Scanned != record.Scanned {
		t.Errorf("Expected scanned %d, got %d", record.Scanned, retrieved.Scanned)
	}
	if retrieved.Reported != record.Reported {
		t.Errorf("Expected reported %d, got %d", record.Reported, retrieved.Reported)
	}
	if retrieved.Bad != record.Bad {
		t.Errorf("Expected bad %d, got %d", record.Bad, retrieved.Bad)
	}
	if retrieved.Unregistered != record.Unregistered {
		t.Errorf("Expected unregistered %d, got %d", record.Unregistered, retrieved.Unregistered)
	}
}

func TestSavePass_InvalidStatus(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	record := PassRecord{
		RSE:       "EDGE_CACHE",
		StartTime: time.Now(),
		EndTime:   time.Now(),
		Status:    "running",
	}

	if err := manager.SavePass(record); err == nil {
		t.Error("Expected error for invalid status, got nil")
	}
}

func TestGetHistory_OrderAndLimit(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		record := PassRecord{
			RunID:     "run",
			RSE:       "EDGE_CACHE",
			StartTime: base.Add(time.Duration(i) * time.Minute),
			EndTime:   base.Add(time.Duration(i)*time.Minute + 30*time.Second),
			Status:    StatusSuccess,
			Scanned:   i,
		}
		if err := manager.SavePass(record); err != nil {
			t.Fatalf("Failed to save pass %d: %v", i, err)
		}
	}

	history, err := manager.GetHistory("EDGE_CACHE", 3)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(history))
	}

	// Newest first
	if history[0].Scanned != 4 {
		t.Errorf("Expected newest record first, got scanned=%d", history[0].Scanned)
	}
}

func TestGetHistory_FiltersByRSE(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	for _, rse := range []string{"EDGE_A", "EDGE_B"} {
		record := PassRecord{
			RSE:       rse,
			StartTime: time.Now(),
			EndTime:   time.Now(),
			Status:    StatusSuccess,
		}
		if err := manager.SavePass(record); err != nil {
			t.Fatalf("Failed to save pass: %v", err)
		}
	}

	history, err := manager.GetHistory("EDGE_A", 10)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 record for EDGE_A, got %d", len(history))
	}
	if history[0].RSE != "EDGE_A" {
		t.Errorf("Expected EDGE_A, got %s", history[0].RSE)
	}
}

func TestGetHistory_InvalidLimit(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	if _, err := manager.GetHistory("EDGE_CACHE", 0); err == nil {
		t.Error("Expected error for zero limit, got nil")
	}
}

func TestGetLastSuccess(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	records := []PassRecord{
		{
			RSE:       "EDGE_CACHE",
			StartTime: time.Now().Add(-30 * time.Minute),
			EndTime:   time.Now().Add(-29 * time.Minute),
			Status:    StatusSuccess,
			Reported:  10,
		},
		{
			RSE:       "EDGE_CACHE",
			StartTime: time.Now().Add(-20 * time.Minute),
			EndTime:   time.Now().Add(-19 * time.Minute),
			Status:    StatusFailed,
			Error:     "endpoint not volatile",
		},
		{
			RSE:       "EDGE_CACHE",
			StartTime: time.Now().Add(-10 * time.Minute),
			EndTime:   time.Now().Add(-9 * time.Minute),
			Status:    StatusSuccess,
			Reported:  20,
		},
	}
	for _, record := range records {
		if err := manager.SavePass(record); err != nil {
			t.Fatalf("Failed to save pass: %v", err)
		}
	}

	last, err := manager.GetLastSuccess("EDGE_CACHE")
	if err != nil {
		t.Fatalf("Failed to get last success: %v", err)
	}
	if last == nil {
		t.Fatal("Expected a last success, got nil")
	}
	if last.Reported != 20 {
		t.Errorf("Expected most recent success (reported=20), got reported=%d", last.Reported)
	}
}

func TestGetLastSuccess_NoRecords(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	last, err := manager.GetLastSuccess("EDGE_CACHE")
	if err != nil {
		t.Fatalf("GetLastSuccess failed: %v", err)
	}
	if last != nil {
		t.Errorf("Expected nil for no records, got %+v", last)
	}
}
