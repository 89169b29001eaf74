package navigation_test

import (
	"net/http/httptest"
	"testing"

	"github.com/studypointin/studypoint/internal/app/system/navigation"
)

func TestSafeBackURL_ValidReturn(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/materials/new?return=%2Fadmin%2Fmaterials%3Fpage%3D2", nil)
	got := navigation.SafeBackURL(r, navigation.MaterialsBackURL)
	if got != "/admin/materials?page=2" {
		t.Errorf("expected return URL honored, got %q", got)
	}
}

func TestSafeBackURL_RejectsWrongPrefix(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/materials/new?return=%2Fadmin%2Fsubjects", nil)
	got := navigation.SafeBackURL(r, navigation.MaterialsBackURL)
	if got != "/admin/materials" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestSafeBackURL_RejectsExcludedSubpath(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/materials/new?return=%2Fadmin%2Fmaterials%2Fedit%2F1", nil)
	got := navigation.SafeBackURL(r, navigation.MaterialsBackURL)
	if got != "/admin/materials" {
		t.Errorf("expected action pages excluded, got %q", got)
	}
}

func TestSafeBackURL_RejectsAbsoluteURL(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/materials/new?return=https%3A%2F%2Fevil.com%2Fadmin%2Fmaterials", nil)
	got := navigation.SafeBackURL(r, navigation.MaterialsBackURL)
	if got != "/admin/materials" {
		t.Errorf("open redirect not blocked, got %q", got)
	}
}

func TestSafeBackURL_PreservesQueryParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/chapters/new?subject=science", nil)
	got := navigation.SafeBackURL(r, navigation.ChaptersBackURL)
	if got != "/admin/chapters?subject=science" {
		t.Errorf("expected subject preserved in fallback, got %q", got)
	}
}
