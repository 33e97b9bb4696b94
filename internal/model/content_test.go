package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWordCount(t *testing.T) {
	item := ContentItem{Content: "Dubai announces  a new\nmetro line"}
	assert.Equal(t, 6, item.WordCount())
}

func TestWordCount_Empty(t *testing.T) {
	item := ContentItem{}
	assert.Equal(t, 0, item.WordCount())
}

func TestAge(t *testing.T) {
	now := time.Now()
	item := ContentItem{PublishedAt: now.Add(-90 * time.Minute)}
	assert.Equal(t, 90*time.Minute, item.Age(now))
}

func TestDefaultLearningData(t *testing.T) {
	ld := DefaultLearningData("news-reporter")
	assert.Equal(t, "news-reporter", ld.AgentID)
	assert.Equal(t, 300, ld.Preferences.PreferredLength.Min)
	assert.Equal(t, 1500, ld.Preferences.PreferredLength.Max)
	assert.Equal(t, 800, ld.Preferences.PreferredLength.Optimal)
	assert.Empty(t, ld.Preferences.TopKeywords)
	assert.Empty(t, ld.SuccessfulPatterns)
	assert.NotNil(t, ld.SuccessfulPatterns)
	assert.NotNil(t, ld.FailedPatterns)
}

func TestSpecialties_Order(t *testing.T) {
	specs := Specialties()
	assert.Len(t, specs, 5)
	assert.Equal(t, SpecialtyNews, specs[0])
	assert.Equal(t, SpecialtyLifestyle, specs[4])
}
