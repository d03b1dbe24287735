package auth

import (
	"bytes"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenizer(t *testing.T) {
	keyReader := bytes.NewReader(bytes.Repeat([]byte{7}, keyLength))
	newTokenizerTests := []struct {
		TokenizerConfig
		wantOk bool
	}{
		{}, // no key reader
		{ // no time func
			TokenizerConfig: TokenizerConfig{
				KeyReader: keyReader,
			},
		},
		{ // no valid duration
			TokenizerConfig: TokenizerConfig{
				KeyReader: keyReader,
				TimeFunc:  time.Now,
			},
		},
		{ // key read error
			TokenizerConfig: TokenizerConfig{
				KeyReader: mockErrorReader{readErr: errors.New("no entropy")},
				TimeFunc:  time.Now,
				Valid:     time.Hour,
			},
		},
		{ // short key
			TokenizerConfig: TokenizerConfig{
				KeyReader: bytes.NewReader([]byte("short")),
				TimeFunc:  time.Now,
				Valid:     time.Hour,
			},
		},
		{
			TokenizerConfig: TokenizerConfig{
				KeyReader: keyReader,
				TimeFunc:  time.Now,
				Valid:     time.Hour,
			},
			wantOk: true,
		},
	}
	for i, test := range newTokenizerTests {
		got, err := test.TokenizerConfig.NewTokenizer()
		switch {
		case !test.wantOk:
			assert.Error(t, err, "Test %v", i)
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		default:
			assert.Equal(t, bytes.Repeat([]byte{7}, keyLength), got.key, "Test %v", i)
			assert.Equal(t, jwt.SigningMethodHS256, got.method, "Test %v", i)
		}
	}
}

func TestReadUsername(t *testing.T) {
	readTests := []struct {
		username              string
		creationSigningMethod jwt.SigningMethod
		readSigningMethod     jwt.SigningMethod
		creationKey           string
		want                  string
		wantOk                bool
	}{
		{
			username:              "selene",
			creationSigningMethod: jwt.SigningMethodHS256,
			readSigningMethod:     jwt.SigningMethodHS256,
			creationKey:           "secret",
			want:                  "selene",
			wantOk:                true,
		},
		{
			username:              "jacob",
			creationSigningMethod: jwt.SigningMethodHS512,
			readSigningMethod:     jwt.SigningMethodHS512,
			creationKey:           "secret",
			want:                  "jacob",
			wantOk:                true,
		},
		{ // wrong method
			username:              "selene",
			creationSigningMethod: jwt.SigningMethodHS512,
			readSigningMethod:     jwt.SigningMethodHS256,
			creationKey:           "secret",
		},
		{ // wrong key
			username:              "selene",
			creationSigningMethod: jwt.SigningMethodHS256,
			readSigningMethod:     jwt.SigningMethodHS256,
			creationKey:           "other secret",
		},
		{ // no username
			creationSigningMethod: jwt.SigningMethodHS256,
			readSigningMethod:     jwt.SigningMethodHS256,
			creationKey:           "secret",
		},
	}
	cfg := TokenizerConfig{
		TimeFunc: func() time.Time { return time.Unix(1000, 0) },
		Valid:    time.Hour,
	}
	for i, test := range readTests {
		creationTokenizer := newTokenizer(test.creationSigningMethod, []byte(test.creationKey), cfg)
		tokenString, err := creationTokenizer.Create(test.username)
		if err != nil {
			t.Errorf("Test %v: unwanted error: %v", i, err)
			continue
		}
		readTokenizer := newTokenizer(test.readSigningMethod, []byte("secret"), cfg)
		got, err := readTokenizer.ReadUsername(tokenString)
		switch {
		case !test.wantOk:
			assert.Error(t, err, "Test %v", i)
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		default:
			assert.Equal(t, test.want, got, "Test %v", i)
		}
	}
}

func TestCreateReadWithTime(t *testing.T) {
	const valid = 1000 * time.Second
	readTests := []struct {
		creationTime int64 // not before
		readTime     int64 // before expiry
		wantOk       bool
	}{
		{
			creationTime: 1,
			readTime:     0,
		},
		{
			creationTime: 2,
			readTime:     2,
			wantOk:       true,
		},
		{
			creationTime: 3,
			readTime:     5,
			wantOk:       true,
		},
		{
			creationTime: 100,
			readTime:     1099,
			wantOk:       true,
		},
		{
			creationTime: 100,
			readTime:     1100,
		},
		{
			creationTime: 100,
			readTime:     1101,
		},
	}
	for i, test := range readTests {
		now := test.creationTime
		cfg := TokenizerConfig{
			TimeFunc: func() time.Time { return time.Unix(now, 0) },
			Valid:    valid,
		}
		tokenizer := newTokenizer(jwt.SigningMethodHS256, []byte("secret"), cfg)
		want := "selene"
		tokenString, err := tokenizer.Create(want)
		require.NoError(t, err, "Test %v", i)
		now = test.readTime
		got, err := tokenizer.ReadUsername(tokenString)
		switch {
		case !test.wantOk:
			assert.Error(t, err, "Test %v", i)
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		default:
			assert.Equal(t, want, got, "Test %v", i)
		}
	}
}

func TestReadUsernameMalformed(t *testing.T) {
	cfg := TokenizerConfig{
		TimeFunc: time.Now,
		Valid:    time.Hour,
	}
	tokenizer := newTokenizer(jwt.SigningMethodHS256, []byte("secret"), cfg)
	for i, tokenString := range []string{"", "not.a.token", "a.b"} {
		_, err := tokenizer.ReadUsername(tokenString)
		assert.Error(t, err, "Test %v", i)
	}
}
