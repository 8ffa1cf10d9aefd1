package repeat

import (
	"reflect"
	"testing"
	"time"
)

func TestWeekdayMapping(t *testing.T) {
	tests := []struct {
		tag  string
		want time.Weekday
	}{
		{"Sun", time.Sunday},
		{"Mon", time.Monday},
		{"Wed", time.Wednesday},
		{"Sat", time.Saturday},
	}
	for _, tt := range tests {
		wd, ok := Weekday(tt.tag)
		if !ok || wd != tt.want {
			t.Errorf("Weekday(%q) = %v, %v", tt.tag, wd, ok)
		}
		if Tag(tt.want) != tt.tag {
			t.Errorf("Tag(%v) = %q, want %q", tt.want, Tag(tt.want), tt.tag)
		}
	}

	if _, ok := Weekday("Monday"); ok {
		t.Error("full weekday names are not valid tags")
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]string{"Sun", "Mon", "Mon", "Fri", "bogus"})
	want := []string{"Mon", "Fri", "Sun"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}

	if Normalize(nil) != nil {
		t.Error("Normalize(nil) should be nil")
	}
}

func TestContains(t *testing.T) {
	days := []string{"Mon", "Wed", "Fri"}
	if !Contains(days, "Wed") {
		t.Error("expected Wed in days")
	}
	if Contains(days, "Sun") {
		t.Error("did not expect Sun in days")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		days []string
		want string
	}{
		{nil, "One time at 07:00"},
		{[]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, "Repeats daily at 07:00"},
		{[]string{"Wed", "Mon"}, "Repeats weekly on Mon, Wed at 07:00"},
	}
	for _, tt := range tests {
		if got := Describe(tt.days, "07:00"); got != tt.want {
			t.Errorf("Describe(%v) = %q, want %q", tt.days, got, tt.want)
		}
	}
}
