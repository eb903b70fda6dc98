package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("Ada.Lovelace@Uni.EDU "))
	assert.True(t, IsEmail("a+b@cs.uni.ac.uk"))
	assert.False(t, IsEmail("ada@uni"))
	assert.False(t, IsEmail("not an email"))
}

func TestMatchesDomain(t *testing.T) {
	domains := []string{"uni.edu", "@college.ac.uk"}

	assert.True(t, MatchesDomain("ada@uni.edu", domains))
	assert.True(t, MatchesDomain("ADA@cs.uni.edu", domains))
	assert.True(t, MatchesDomain("bob@college.ac.uk", domains))
	assert.False(t, MatchesDomain("eve@evil-uni.edu", domains))
	assert.False(t, MatchesDomain("eve@uni.edu.evil.com", domains))
	assert.False(t, MatchesDomain("nobody", domains))
	assert.False(t, MatchesDomain("ada@uni.edu", nil))
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "ada.lovelace", UsernameFromEmail("Ada.Lovelace@uni.edu"))
	assert.Equal(t, "a_b", UsernameFromEmail("a+b@uni.edu"))
	assert.Equal(t, "x__", UsernameFromEmail("x@uni.edu"))
	assert.True(t, IsUsername(UsernameFromEmail("Ünïcode-name@uni.edu")))
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("https://robotics.example.org"))
	assert.False(t, IsHTTPURL("javascript:alert(1)"))
	assert.False(t, IsHTTPURL("/relative"))
}
