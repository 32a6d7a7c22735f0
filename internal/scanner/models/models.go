// Package models holds the data types shared by the scan pipeline: resolved
// products, queued offline scans, and sync summaries.
package models

import "time"

// MealType tags a diary entry with the meal it belongs to.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// Product is the result of a barcode lookup: nutrition per 100g plus
// provenance. Optional nutrients are pointers so "unknown" survives the
// round trip as null rather than zero.
type Product struct {
	ID              string   `json:"id"`
	Barcode         string   `json:"barcode"`
	Name            string   `json:"name"`
	Brand           string   `json:"brand,omitempty"`
	CaloriesPer100g float64  `json:"calories_per_100g"`
	ProteinG        float64  `json:"protein_g"`
	CarbsG          float64  `json:"carbs_g"`
	FatG            float64  `json:"fat_g"`
	FiberG          *float64 `json:"fiber_g,omitempty"`
	SugarG          *float64 `json:"sugar_g,omitempty"`
	SodiumMg        *float64 `json:"sodium_mg,omitempty"`
	ServingSizeG    float64  `json:"serving_size_g"`
	ImageURL        string   `json:"image_url,omitempty"`
	Source          string   `json:"source"`
	Verified        bool     `json:"verified"`
}

// ScanStatus tracks a queued scan through synchronization.
//
// Legal transitions: pending → syncing → pending (transient failure),
// syncing → failed (permanent failure), syncing → removed (success).
type ScanStatus string

const (
	StatusPending ScanStatus = "pending"
	StatusSyncing ScanStatus = "syncing"
	StatusFailed  ScanStatus = "failed"
)

// QueuedScan is a durable record of a capture taken while offline, carrying
// enough context to replay the diary write later.
type QueuedScan struct {
	ID           string     `json:"id"`
	Barcode      string     `json:"barcode"`
	Date         string     `json:"date"` // target diary date, YYYY-MM-DD
	Meal         MealType   `json:"meal_type"`
	Servings     float64    `json:"servings"`
	ProductName  string     `json:"product_name,omitempty"`
	QueuedAt     time.Time  `json:"queued_at"`
	Status       ScanStatus `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// DiaryEntry is the write side of a confirmed scan.
type DiaryEntry struct {
	UserID    string   `json:"user_id"`
	Date      string   `json:"date"`
	Meal      MealType `json:"meal_type"`
	Servings  float64  `json:"servings"`
	QuantityG float64  `json:"quantity_g"`
	Product   Product  `json:"product"`
}

// SyncResult reports the outcome of synchronizing a single queued scan.
type SyncResult struct {
	ID           string `json:"id"`
	Barcode      string `json:"barcode"`
	Success      bool   `json:"success"`
	ProductName  string `json:"product_name,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// SyncSummary aggregates one sync pass. Failed counts every scan that did
// not succeed this pass, including transient failures that stay eligible
// for the next pass.
type SyncSummary struct {
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []SyncResult `json:"results"`
}
