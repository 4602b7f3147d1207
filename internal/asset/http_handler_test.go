package asset

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library3d/internal/catalog"
	"library3d/internal/httpx"
)

func asRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if role != "" {
				r = r.WithContext(httpx.ContextWithUser(r.Context(), "u-1", role))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newTestMux(t *testing.T, store Store, role string) *http.ServeMux {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	books := catalog.NewMemoryProvider(catalog.Fixture())
	mux := http.NewServeMux()
	NewHTTPHandler(store, books, logger).Register(mux, asRole(role))
	return mux
}

func request(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	mux.ServeHTTP(w, r)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Data
}

func TestHTTPHandler_GetModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockStore(ctrl)
	store.EXPECT().SignedURL(gomock.Any(), Ref{Kind: KindModel, BookID: "1"}).Return("https://s3.test/models/1.glb?sig=1", nil)
	store.EXPECT().TTL().Return(time.Hour)

	w := request(newTestMux(t, store, ""), http.MethodGet, "/v1/books/1/assets/model", "")

	assert.Equal(t, http.StatusOK, w.Code)
	got := decodeData[URLResponse](t, w)
	assert.Equal(t, "https://s3.test/models/1.glb?sig=1", got.URL)
	assert.Equal(t, got.URL, got.GLTFURL)
	assert.Equal(t, 3600, got.ExpiresIn)
	assert.Equal(t, KindModel, got.AssetType)
}

func TestHTTPHandler_GetCoverMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockStore(ctrl)
	store.EXPECT().SignedURL(gomock.Any(), Ref{Kind: KindCover, BookID: "2"}).Return("", ErrNoAsset)

	w := request(newTestMux(t, store, ""), http.MethodGet, "/v1/books/2/assets/cover", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No cover available")
}

func TestHTTPHandler_GetUnknownBookOrKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mux := newTestMux(t, NewMockStore(ctrl), "")

	assert.Equal(t, http.StatusNotFound, request(mux, http.MethodGet, "/v1/books/999/assets/model", "").Code)
	assert.Equal(t, http.StatusNotFound, request(mux, http.MethodGet, "/v1/books/1/assets/audio", "").Code)
	assert.Equal(t, http.StatusNotFound, request(mux, http.MethodGet, "/v1/books/1/assets/page", "").Code)
}

func TestHTTPHandler_GetStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockStore(ctrl)
	store.EXPECT().SignedURL(gomock.Any(), gomock.Any()).Return("", errors.New("connection refused"))

	w := request(newTestMux(t, store, ""), http.MethodGet, "/v1/books/1/assets/cover", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHTTPHandler_GetPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockStore(ctrl)
	store.EXPECT().SignedURL(gomock.Any(), Ref{Kind: KindPage, BookID: "3", Page: 12}).Return("https://s3.test/pages/3/12.jpg", nil)
	store.EXPECT().TTL().Return(time.Hour)
	mux := newTestMux(t, store, "")

	w := request(mux, http.MethodGet, "/v1/books/3/assets/pages/12", "")
	assert.Equal(t, http.StatusOK, w.Code)
	got := decodeData[URLResponse](t, w)
	assert.Equal(t, 12, got.PageNumber)
	assert.Equal(t, KindPage, got.AssetType)
	assert.Empty(t, got.GLTFURL)

	for _, n := range []string{"0", "101", "first"} {
		w := request(mux, http.MethodGet, "/v1/books/3/assets/pages/"+n, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, n)
	}
}

func TestHTTPHandler_Upload(t *testing.T) {
	t.Run("requires admin", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		w := request(newTestMux(t, NewMockStore(ctrl), "USER"), http.MethodPost, "/v1/books/1/assets/upload/model",
			`{"content_type":"model/gltf-binary"}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rejects content type", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		w := request(newTestMux(t, NewMockStore(ctrl), "ADMIN"), http.MethodPost, "/v1/books/1/assets/upload/model",
			`{"content_type":"image/png"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "content_type")
	})

	t.Run("rejects bad page", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		w := request(newTestMux(t, NewMockStore(ctrl), "ADMIN"), http.MethodPost, "/v1/books/1/assets/upload/page",
			`{"content_type":"image/jpeg","page_number":101}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("signs page upload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		store := NewMockStore(ctrl)
		store.EXPECT().UploadURL(gomock.Any(), Ref{Kind: KindPage, BookID: "1", Page: 4}).Return("https://s3.test/put", nil)
		store.EXPECT().TTL().Return(30 * time.Minute)

		w := request(newTestMux(t, store, "ADMIN"), http.MethodPost, "/v1/books/1/assets/upload/page",
			`{"content_type":"image/webp","page_number":4}`)

		assert.Equal(t, http.StatusOK, w.Code)
		got := decodeData[UploadResponse](t, w)
		assert.Equal(t, "pages/1/4.jpg", got.Key)
		assert.Equal(t, int64(5), got.MaxSizeMB)
		assert.Equal(t, 1800, got.ExpiresIn)
		assert.Equal(t, "image/webp", got.RequiredHeaders["Content-Type"])
	})
}
