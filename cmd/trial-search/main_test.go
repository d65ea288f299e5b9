package main

import "testing"

func TestGetEnv(t *testing.T) {
	t.Run("unset returns default", func(t *testing.T) {
		if got := getEnv("TRIAL_SEARCH_TEST_UNSET", "fallback"); got != "fallback" {
			t.Errorf("getEnv() = %q, want %q", got, "fallback")
		}
	})

	t.Run("set returns value", func(t *testing.T) {
		t.Setenv("TRIAL_SEARCH_TEST_SET", "value")
		if got := getEnv("TRIAL_SEARCH_TEST_SET", "fallback"); got != "value" {
			t.Errorf("getEnv() = %q, want %q", got, "value")
		}
	})

	t.Run("empty returns default", func(t *testing.T) {
		t.Setenv("TRIAL_SEARCH_TEST_EMPTY", "")
		if got := getEnv("TRIAL_SEARCH_TEST_EMPTY", "fallback"); got != "fallback" {
			t.Errorf("getEnv() = %q, want %q", got, "fallback")
		}
	})
}
