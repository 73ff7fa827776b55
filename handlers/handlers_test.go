package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"mediaalbums/auth"
	"mediaalbums/db"
	"mediaalbums/gallery"
	"mediaalbums/models"
	"mediaalbums/moderation"
	"mediaalbums/storage"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

type testServer struct {
	api    *API
	router *gin.Engine
	root   string
}

func newTestServer(t *testing.T, user *models.User) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb, err := db.Open(db.Config{SQLiteFile: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	if err := models.Init(gdb); err != nil {
		t.Fatal(err)
	}
	root := t.TempDir()
	cfg := gallery.DefaultConfig()
	cfg.VideoFilesEnabled = true
	api := &API{
		DB:      gdb,
		Storage: storage.NewDiskStorage(&storage.Bucket{Name: "test", Path: root}),
		Gallery: cfg,
	}
	r := gin.New()
	r.Use(sessions.Sessions("session", cookie.NewStore([]byte("test-secret"))))
	if user != nil {
		u := *user
		r.Use(func(c *gin.Context) { auth.SetUser(c, u) })
	} else {
		r.Use(auth.WithUser(gdb))
	}
	api.Register(r)
	return &testServer{api: api, router: r, root: root}
}

func staffUser() *models.User {
	return &models.User{ID: 1, Name: "Staff", Grants: []models.Grant{{Permission: models.PermissionStaff}}}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

// postMultipart sends values plus files, keyed by field name, each given as
// file name and content
func (s *testServer) postMultipart(t *testing.T, path string, values map[string]string, files map[string][2]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range values {
		mw.WriteField(k, v)
	}
	for field, file := range files {
		fw, err := mw.CreateFormFile(field, file[0])
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(file[1]))
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req)
}

// storedFiles lists the files on disk, relative to the storage root
func (s *testServer) storedFiles(t *testing.T) (files []string) {
	t.Helper()
	filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			rel, _ := filepath.Rel(s.root, p)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	return
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
}

func pngBytes(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 80), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func (s *testServer) createAlbum(t *testing.T, name, visibility string) AlbumInfo {
	t.Helper()
	w := s.postForm("/admin/albums", url.Values{"name": {name}, "visibility": {visibility}})
	if w.Code != http.StatusCreated {
		t.Fatalf("creating album: %d %s", w.Code, w.Body.String())
	}
	var info AlbumInfo
	decode(t, w, &info)
	return info
}

func (s *testServer) createPhoto(t *testing.T, albumID uint64, name string, cover bool) ItemInfo {
	t.Helper()
	w := s.postMultipart(t, "/admin/items/photo", map[string]string{
		"album_id":    fmt.Sprint(albumID),
		"name":        name,
		"album_photo": fmt.Sprint(cover),
	}, map[string][2]string{"image": {name + ".png", pngBytes(t)}})
	if w.Code != http.StatusCreated {
		t.Fatalf("creating photo %q: %d %s", name, w.Code, w.Body.String())
	}
	var info ItemInfo
	decode(t, w, &info)
	return info
}

func TestAdminRequiresStaff(t *testing.T) {
	visitor := &models.User{ID: 5}
	for _, user := range []*models.User{nil, visitor} {
		s := newTestServer(t, user)
		for _, path := range []string{"/admin/albums", "/admin/pending"} {
			w := s.do(httptest.NewRequest(http.MethodGet, path, nil))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("GET %s as %v: status %d", path, user, w.Code)
			}
		}
	}
}

func TestAlbumCreateValidation(t *testing.T) {
	s := newTestServer(t, staffUser())

	w := s.postForm("/admin/albums", url.Values{"visibility": {"hidden"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	var resp ValidationResponse
	decode(t, w, &resp)
	if resp.Fields["name"] != "This field is required." {
		t.Errorf("name error %q", resp.Fields["name"])
	}
	if resp.Fields["visibility"] != "Select a valid choice." {
		t.Errorf("visibility error %q", resp.Fields["visibility"])
	}

	info := s.createAlbum(t, "Summer Trip", "public")
	if info.Slug != "summer-trip" || info.URL != "/album/summer-trip/" {
		t.Errorf("created %+v", info)
	}
	w = s.postForm("/admin/albums", url.Values{"name": {"Summer Trip"}, "visibility": {"public"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate name: status %d", w.Code)
	}
	decode(t, w, &resp)
	if _, ok := resp.Fields["name"]; !ok {
		t.Errorf("duplicate name not reported: %v", resp.Fields)
	}
}

func TestAlbumUpdateKeepsSlug(t *testing.T) {
	s := newTestServer(t, staffUser())
	info := s.createAlbum(t, "Winter", "public")

	w := s.postForm(fmt.Sprintf("/admin/albums/%d", info.ID), url.Values{
		"name":       {"Winter 2023"},
		"slug":       {"other"},
		"visibility": {"private"},
		"ordering":   {"3"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d %s", w.Code, w.Body.String())
	}
	var updated AlbumInfo
	decode(t, w, &updated)
	if updated.Name != "Winter 2023" || updated.Slug != "winter" || updated.Visibility != models.VisibilityPrivate || updated.Ordering != 3 {
		t.Errorf("updated %+v", updated)
	}

	w = s.postForm("/admin/albums/999", url.Values{"name": {"x"}, "visibility": {"public"}})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing album: status %d", w.Code)
	}
}

func TestItemCoverExclusive(t *testing.T) {
	s := newTestServer(t, staffUser())
	album := s.createAlbum(t, "Beach", "public")

	first := s.createPhoto(t, album.ID, "first", true)
	if first.Thumb == "" || first.Thumb == first.Image {
		t.Errorf("thumb not generated: %+v", first)
	}
	second := s.createPhoto(t, album.ID, "second", true)

	w := s.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/admin/albums/%d", album.ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var detail AlbumDetail
	decode(t, w, &detail)
	if detail.NumItems != 2 || len(detail.Items) != 2 {
		t.Fatalf("items %+v", detail.Items)
	}
	covers := 0
	for _, item := range detail.Items {
		if item.IsCover {
			covers++
			if item.ID != second.ID {
				t.Errorf("cover is %d, want %d", item.ID, second.ID)
			}
		}
	}
	if covers != 1 {
		t.Errorf("%d covers", covers)
	}
	if detail.Image != second.Thumb {
		t.Errorf("album image %q, want %q", detail.Image, second.Thumb)
	}
}

func TestItemValidationStoresNothing(t *testing.T) {
	s := newTestServer(t, staffUser())
	album := s.createAlbum(t, "Clips", "public")

	w := s.postMultipart(t, "/admin/items/video", map[string]string{
		"album_id":    fmt.Sprint(album.ID),
		"name":        "clip",
		"album_photo": "true",
	}, map[string][2]string{"video_file_1": {"clip.mov", "not really a video"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d %s", w.Code, w.Body.String())
	}
	var resp ValidationResponse
	decode(t, w, &resp)
	if !strings.Contains(resp.Fields["video_file_1"], "mp4") {
		t.Errorf("video_file_1 error %q", resp.Fields["video_file_1"])
	}
	if _, ok := resp.Fields["album_photo"]; !ok {
		t.Errorf("cover without poster not reported: %v", resp.Fields)
	}
	if files := s.storedFiles(t); len(files) != 0 {
		t.Errorf("stored %v", files)
	}

	w = s.postMultipart(t, "/admin/items/photo", map[string]string{
		"album_id": "999",
		"name":     "lost",
	}, map[string][2]string{"image": {"lost.png", pngBytes(t)}})
	decode(t, w, &resp)
	if w.Code != http.StatusBadRequest || resp.Fields["album_id"] == "" {
		t.Errorf("unknown album: %d %v", w.Code, resp.Fields)
	}
}

func TestItemDisabledKind(t *testing.T) {
	s := newTestServer(t, staffUser())
	album := s.createAlbum(t, "Songs", "public")
	w := s.postMultipart(t, "/admin/items/audio", map[string]string{
		"album_id": fmt.Sprint(album.ID),
		"name":     "song",
	}, map[string][2]string{"audio_file_1": {"song.mp3", "ID3"}})
	if w.Code != http.StatusNotFound {
		t.Errorf("audio disabled: status %d", w.Code)
	}
	w = s.do(httptest.NewRequest(http.MethodGet, "/admin/items/sculpture/1", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown kind: status %d", w.Code)
	}
}

func TestItemReplaceAndDeleteFiles(t *testing.T) {
	s := newTestServer(t, staffUser())
	album := s.createAlbum(t, "Garden", "public")
	photo := s.createPhoto(t, album.ID, "rose", false)
	if n := len(s.storedFiles(t)); n != 2 {
		t.Fatalf("%d files after create", n)
	}

	w := s.postMultipart(t, fmt.Sprintf("/admin/items/photo/%d", photo.ID), map[string]string{
		"album_id": fmt.Sprint(album.ID),
		"name":     "tulip",
	}, map[string][2]string{"image": {"tulip.png", pngBytes(t)}})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	files := s.storedFiles(t)
	if len(files) != 2 {
		t.Fatalf("files after replace: %v", files)
	}
	for _, f := range files {
		if !strings.Contains(f, "tulip") {
			t.Errorf("stale file %s", f)
		}
	}

	path := fmt.Sprintf("/admin/items/photo/%d", photo.ID)
	if w := s.do(httptest.NewRequest(http.MethodDelete, path, nil)); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	if files := s.storedFiles(t); len(files) != 0 {
		t.Errorf("files after delete: %v", files)
	}
	if w := s.do(httptest.NewRequest(http.MethodDelete, path, nil)); w.Code != http.StatusNotFound {
		t.Errorf("second delete: %d", w.Code)
	}
}

func TestAlbumDeleteRemovesFiles(t *testing.T) {
	s := newTestServer(t, staffUser())
	album := s.createAlbum(t, "Old", "public")
	s.createPhoto(t, album.ID, "a", false)
	s.createPhoto(t, album.ID, "b", false)

	w := s.do(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/albums/%d", album.ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if files := s.storedFiles(t); len(files) != 0 {
		t.Errorf("files left: %v", files)
	}
	var count int64
	s.api.DB.Model(&models.Photo{}).Count(&count)
	if count != 0 {
		t.Errorf("%d photos left", count)
	}
}

func TestPendingApprove(t *testing.T) {
	s := newTestServer(t, staffUser())
	submitted, err := moderation.Submit(s.api.DB, moderation.Submission{Name: "sunset", Image: "media_albums/sunset.png"})
	if err != nil {
		t.Fatal(err)
	}

	w := s.do(httptest.NewRequest(http.MethodGet, "/admin/pending", nil))
	var pending []PendingInfo
	decode(t, w, &pending)
	if len(pending) != 1 || pending[0].ID != submitted.ID {
		t.Fatalf("pending %+v", pending)
	}

	w = s.postForm("/admin/pending/approve", url.Values{"ids": {fmt.Sprint(submitted.ID), "999"}})
	if w.Code != http.StatusMultiStatus {
		t.Fatalf("status %d %s", w.Code, w.Body.String())
	}
	var resp ApproveResponse
	decode(t, w, &resp)
	if len(resp.Approved) != 1 || resp.Approved[0].Name != "sunset" {
		t.Errorf("approved %+v", resp.Approved)
	}
	if len(resp.Failed) != 1 || resp.Failed[0] != 999 {
		t.Errorf("failed %v", resp.Failed)
	}

	album, err := models.AlbumByID(s.api.DB, resp.Approved[0].AlbumID)
	if err != nil {
		t.Fatal(err)
	}
	if album.Name != s.api.Gallery.UserUploadsAlbumName || album.Visibility != models.VisibilityPublic {
		t.Errorf("approved into %+v", album)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/admin/pending", nil))
	decode(t, w, &pending)
	if len(pending) != 0 {
		t.Errorf("still pending: %+v", pending)
	}
}

func TestPendingDiscard(t *testing.T) {
	s := newTestServer(t, staffUser())
	image := "media_albums/pending/x.png"
	if _, err := s.api.Storage.Save(image, strings.NewReader(pngBytes(t))); err != nil {
		t.Fatal(err)
	}
	submitted, err := moderation.Submit(s.api.DB, moderation.Submission{Name: "x", Image: image})
	if err != nil {
		t.Fatal(err)
	}
	path := fmt.Sprintf("/admin/pending/%d", submitted.ID)
	if w := s.do(httptest.NewRequest(http.MethodDelete, path, nil)); w.Code != http.StatusOK {
		t.Fatalf("discard: %d", w.Code)
	}
	if files := s.storedFiles(t); len(files) != 0 {
		t.Errorf("files left: %v", files)
	}
	if w := s.do(httptest.NewRequest(http.MethodDelete, path, nil)); w.Code != http.StatusNotFound {
		t.Errorf("second discard: %d", w.Code)
	}
}

func TestUserLogin(t *testing.T) {
	s := newTestServer(t, nil)
	if _, err := models.UserCreate(s.api.DB, "Op", "op@example.com", "secret", models.PermissionStaff); err != nil {
		t.Fatal(err)
	}

	w := s.postForm("/user/login", url.Values{"email": {"op@example.com"}, "password": {"wrong"}})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: %d", w.Code)
	}
	w = s.postForm("/user/login", url.Values{"email": {"op@example.com"}, "password": {"secret"}})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var info UserInfo
	decode(t, w, &info)
	if info.Email != "op@example.com" || len(info.Permissions) != 1 {
		t.Errorf("user %+v", info)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/albums", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	if w := s.do(req); w.Code != http.StatusOK {
		t.Errorf("albums after login: %d", w.Code)
	}
}
