package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/utils"
)

type fakeKeys struct {
	recs map[bson.ObjectID]*model.KeyRecord
}

func (f *fakeKeys) FindByUserID(ctx context.Context, userID bson.ObjectID) (*model.KeyRecord, error) {
	rec, ok := f.recs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

// issue returns a user id, its stored key record and a signed access token.
func issue(t *testing.T, keys *fakeKeys, ttl time.Duration) (bson.ObjectID, string) {
	t.Helper()
	userID := bson.NewObjectID()
	publicKey, err := utils.RandomHex(64)
	require.NoError(t, err)
	privateKey, err := utils.RandomHex(64)
	require.NoError(t, err)
	keys.recs[userID] = &model.KeyRecord{UserID: userID, PublicKey: publicKey, PrivateKey: privateKey}

	tok, err := utils.GenerateToken(map[string]any{"userId": userID.Hex(), "email": "a@x.com"}, publicKey, ttl)
	require.NoError(t, err)
	return userID, tok
}

func doRequest(keys *fakeKeys, authHeader string) (*httptest.ResponseRecorder, *string, *string) {
	e := echo.New()
	var gotUserID, gotEmail string
	h := KeyRecordAuth(keys)(func(c echo.Context) error {
		gotUserID, _ = c.Get(CtxUserID).(string)
		gotEmail, _ = c.Get(CtxEmail).(string)
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/user/profile", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	_ = h(e.NewContext(req, rec))
	return rec, &gotUserID, &gotEmail
}

func TestKeyRecordAuth_ValidToken(t *testing.T) {
	keys := &fakeKeys{recs: map[bson.ObjectID]*model.KeyRecord{}}
	userID, tok := issue(t, keys, time.Hour)

	rec, gotUserID, gotEmail := doRequest(keys, "Bearer "+tok)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.Hex(), *gotUserID)
	assert.Equal(t, "a@x.com", *gotEmail)
}

func TestKeyRecordAuth_MissingHeader(t *testing.T) {
	keys := &fakeKeys{recs: map[bson.ObjectID]*model.KeyRecord{}}

	rec, _, _ := doRequest(keys, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestKeyRecordAuth_GarbageToken(t *testing.T) {
	keys := &fakeKeys{recs: map[bson.ObjectID]*model.KeyRecord{}}

	rec, _, _ := doRequest(keys, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Deleting the key record (logout) must make an otherwise valid token
// unverifiable.
func TestKeyRecordAuth_RecordDeleted(t *testing.T) {
	keys := &fakeKeys{recs: map[bson.ObjectID]*model.KeyRecord{}}
	userID, tok := issue(t, keys, time.Hour)

	rec, _, _ := doRequest(keys, "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code)

	delete(keys.recs, userID)
	rec, _, _ = doRequest(keys, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestKeyRecordAuth_RotatedSecrets(t *testing.T) {
	keys := &fakeKeys{recs: map[bson.ObjectID]*model.KeyRecord{}}
	userID, tok := issue(t, keys, time.Hour)

	// A new login stores fresh secrets; tokens from the old session die.
	newKey, err := utils.RandomHex(64)
	require.NoError(t, err)
	keys.recs[userID].PublicKey = newKey

	rec, _, _ := doRequest(keys, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// The refresh token is signed with the record's other secret and must not
// pass the access-token gate.
func TestKeyRecordAuth_RefreshTokenRejected(t *testing.T) {
	keys := &fakeKeys{recs: map[bson.ObjectID]*model.KeyRecord{}}
	userID, _ := issue(t, keys, time.Hour)

	refresh, err := utils.GenerateToken(
		map[string]any{"userId": userID.Hex(), "email": "a@x.com"},
		keys.recs[userID].PrivateKey, time.Hour)
	require.NoError(t, err)

	rec, _, _ := doRequest(keys, "Bearer "+refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestKeyRecordAuth_ExpiredToken(t *testing.T) {
	keys := &fakeKeys{recs: map[bson.ObjectID]*model.KeyRecord{}}
	_, tok := issue(t, keys, -time.Minute)

	rec, _, _ := doRequest(keys, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
