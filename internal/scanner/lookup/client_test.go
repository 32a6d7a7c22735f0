package lookup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/scansync/internal/scanner/models"
)

func TestLookup_Success(t *testing.T) {
	var gotPath atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		json.NewEncoder(w).Encode(models.Product{
			ID:              "p1",
			Barcode:         "4006381333931",
			Name:            "Stabilo Boss Highlighter",
			Brand:           "Stabilo",
			CaloriesPer100g: 0,
			ServingSizeG:    100,
			Source:          "open_food_facts",
		})
	}))
	defer ts.Close()

	c := NewClientWithHTTP(ts.URL, time.Second, ts.Client())
	p, err := c.Lookup(context.Background(), "4006381333931")
	require.NoError(t, err)
	require.Equal(t, "/api/barcode/4006381333931", gotPath.Load())
	require.Equal(t, "Boss Highlighter", p.Name, "duplicated brand prefix is stripped")
}

func TestLookup_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"Product not found"}}`))
	}))
	defer ts.Close()

	c := NewClientWithHTTP(ts.URL, time.Second, ts.Client())
	p, err := c.Lookup(context.Background(), "96385074")
	require.Nil(t, p)
	require.True(t, IsNotFound(err))
	require.False(t, IsTransient(err))
	require.EqualValues(t, 1, calls.Load(), "definitive negatives are not retried")
}

func TestLookup_ServerErrorIsRetriedThenTransient(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":{"code":"UPSTREAM_ERROR","message":"upstream down"}}`))
	}))
	defer ts.Close()

	c := NewClientWithHTTP(ts.URL, 10*time.Second, ts.Client())
	_, err := c.Lookup(context.Background(), "96385074")
	require.Error(t, err)
	require.True(t, IsTransient(err))
	require.Equal(t, KindUnavailable, KindOf(err))
	require.EqualValues(t, 1+retryMax, calls.Load())
}

func TestLookup_RecoversOnRetry(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(models.Product{ID: "p1", Barcode: "96385074", Name: "Oats"})
	}))
	defer ts.Close()

	c := NewClientWithHTTP(ts.URL, 10*time.Second, ts.Client())
	p, err := c.Lookup(context.Background(), "96385074")
	require.NoError(t, err)
	require.Equal(t, "Oats", p.Name)
	require.EqualValues(t, 2, calls.Load())
}

func TestLookup_UnreachableIsTransient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := NewClient(url, time.Second)
	_, err := c.Lookup(context.Background(), "96385074")
	require.Error(t, err)
	require.True(t, IsTransient(err))
}

func TestLookup_DeadlineBecomesTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		json.NewEncoder(w).Encode(models.Product{})
	}))
	defer ts.Close()

	c := NewClientWithHTTP(ts.URL, 50*time.Millisecond, ts.Client())
	_, err := c.Lookup(context.Background(), "96385074")
	require.Error(t, err)
	require.Equal(t, KindTimeout, KindOf(err))
	require.True(t, IsTransient(err))
}

func TestCommit(t *testing.T) {
	t.Run("success posts the entry", func(t *testing.T) {
		var got models.DiaryEntry
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/diary/entries", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusCreated)
		}))
		defer ts.Close()

		c := NewClientWithHTTP(ts.URL, time.Second, ts.Client())
		entry := models.DiaryEntry{
			UserID:    "u1",
			Date:      "2026-03-01",
			Meal:      models.MealLunch,
			Servings:  1,
			QuantityG: 30,
			Product:   models.Product{Barcode: "96385074", Name: "Oats"},
		}
		require.NoError(t, c.Commit(context.Background(), entry))
		require.Equal(t, "u1", got.UserID)
		require.Equal(t, models.MealLunch, got.Meal)
	})

	t.Run("rejection is permanent", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":"VALIDATION","message":"servings must be positive"}}`))
		}))
		defer ts.Close()

		c := NewClientWithHTTP(ts.URL, time.Second, ts.Client())
		err := c.Commit(context.Background(), models.DiaryEntry{})
		require.Error(t, err)
		require.False(t, IsTransient(err))
		require.Contains(t, err.Error(), "servings must be positive")
	})
}

func TestKindClassification(t *testing.T) {
	require.True(t, IsTransient(&Error{Kind: KindUnavailable}))
	require.True(t, IsTransient(&Error{Kind: KindTimeout}))
	require.False(t, IsTransient(&Error{Kind: KindNotFound}))
	require.False(t, IsTransient(&Error{Kind: KindUpstream}))
	require.Equal(t, KindTimeout, KindOf(context.DeadlineExceeded))
	require.Equal(t, KindUpstream, KindOf(context.Canceled))
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name  string
		brand string
		want  string
	}{
		{"Stabilo Boss Highlighter", "Stabilo", "Boss Highlighter"},
		{"Barilla - Spaghetti n.5", "Barilla", "Spaghetti n.5"},
		{"  Plain Oats  ", "", "Plain Oats"},
		{"nutella", "Nutella", ""},
		{
			// Truncated at the last word boundary past position 30.
			"Organic Whole Grain Rolled Oats With Extra Fiber And Honey",
			"",
			"Organic Whole Grain Rolled Oats With Extra Fiber",
		},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, CleanName(tt.name, tt.brand), "name %q brand %q", tt.name, tt.brand)
	}
}
