package models

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"mediaalbums/db"
	"mediaalbums/gallery"

	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(db.Config{SQLiteFile: ":memory:"})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	if err := Init(gdb); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return gdb
}

func allKinds() gallery.Config {
	cfg := gallery.DefaultConfig()
	cfg.VideoFilesEnabled = true
	cfg.AudioFilesEnabled = true
	return cfg
}

func createAlbum(t *testing.T, gdb *gorm.DB, name string, visibility Visibility) Album {
	t.Helper()
	album := Album{Name: name, Visibility: visibility}
	if err := SaveAlbum(gdb, &album); err != nil {
		t.Fatalf("creating album %q: %v", name, err)
	}
	return album
}

func mustSave(t *testing.T, gdb *gorm.DB, item MediaItem, cfg gallery.Config) {
	t.Helper()
	if err := SaveItem(gdb, item, cfg); err != nil {
		t.Fatalf("saving %s %q: %v", item.ItemKind(), item.ItemName(), err)
	}
}

func coverFlags(t *testing.T, gdb *gorm.DB, albumID uint64) (flagged []string) {
	t.Helper()
	for _, kind := range gallery.Kinds {
		items, err := albumItemsOfKind(gdb, albumID, kind)
		if err != nil {
			t.Fatal(err)
		}
		for _, item := range items {
			if item.AlbumCover() {
				flagged = append(flagged, gallery.ItemURL(item))
			}
		}
	}
	return
}

func TestSaveItemCoverExclusive(t *testing.T) {
	gdb := newTestDB(t)
	cfg := allKinds()
	album := createAlbum(t, gdb, "Holidays", VisibilityPublic)
	other := createAlbum(t, gdb, "Other", VisibilityPublic)

	photo := &Photo{Upload: Upload{AlbumID: album.ID, Name: "beach", IsCover: true}, Image: "beach.jpg"}
	mustSave(t, gdb, photo, cfg)
	otherPhoto := &Photo{Upload: Upload{AlbumID: other.ID, Name: "elsewhere", IsCover: true}, Image: "x.jpg"}
	mustSave(t, gdb, otherPhoto, cfg)

	video := &Video{Upload: Upload{AlbumID: album.ID, Name: "waves", IsCover: true}, VideoFile1: "waves.mp4", Poster: "waves.jpg"}
	mustSave(t, gdb, video, cfg)
	if got, want := coverFlags(t, gdb, album.ID), []string{gallery.ItemURL(video)}; !reflect.DeepEqual(got, want) {
		t.Errorf("after video cover: flagged = %v, want %v", got, want)
	}

	audio := &Audio{Upload: Upload{AlbumID: album.ID, Name: "seagulls", IsCover: true}, AudioFile1: "gulls.mp3", CoverArt: "gulls.png"}
	mustSave(t, gdb, audio, cfg)
	if got, want := coverFlags(t, gdb, album.ID), []string{gallery.ItemURL(audio)}; !reflect.DeepEqual(got, want) {
		t.Errorf("after audio cover: flagged = %v, want %v", got, want)
	}

	// other albums keep their cover
	if got, want := coverFlags(t, gdb, other.ID), []string{gallery.ItemURL(otherPhoto)}; !reflect.DeepEqual(got, want) {
		t.Errorf("other album flagged = %v, want %v", got, want)
	}

	cover, err := CoverItem(gdb, album.ID, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !gallery.SameItem(cover, audio) || gallery.CoverImage(cover) != "gulls.png" {
		t.Errorf("CoverItem() = %v", cover)
	}

	// saving a non-cover item leaves the flag alone
	photo.IsCover = false
	photo.Caption = "updated"
	mustSave(t, gdb, photo, cfg)
	if got := coverFlags(t, gdb, album.ID); len(got) != 1 {
		t.Errorf("flagged after plain save = %v", got)
	}
}

func TestCoverItemPriority(t *testing.T) {
	gdb := newTestDB(t)
	cfg := allKinds()
	album := createAlbum(t, gdb, "Mixed", VisibilityPublic)

	cover, err := CoverItem(gdb, album.ID, cfg)
	if err != nil || cover != nil {
		t.Fatalf("CoverItem(empty) = %v, %v", cover, err)
	}

	// rows written directly so that two kinds carry the flag at once
	video := &Video{Upload: Upload{AlbumID: album.ID, Name: "v", IsCover: true}, VideoFile1: "v.mp4", Poster: "v.jpg"}
	photo := &Photo{Upload: Upload{AlbumID: album.ID, Name: "p", IsCover: true}, Image: "p.jpg"}
	if err := gdb.Omit("Album").Create(video).Error; err != nil {
		t.Fatal(err)
	}
	if err := gdb.Omit("Album").Create(photo).Error; err != nil {
		t.Fatal(err)
	}
	if cover, _ = CoverItem(gdb, album.ID, cfg); !gallery.SameItem(cover, photo) {
		t.Errorf("CoverItem() = %v, want the photo", cover)
	}
	cfg.PhotosEnabled = false
	if cover, _ = CoverItem(gdb, album.ID, cfg); !gallery.SameItem(cover, video) {
		t.Errorf("CoverItem(photos disabled) = %v, want the video", cover)
	}
}

func TestVideoCoverRequiresPoster(t *testing.T) {
	gdb := newTestDB(t)
	cfg := allKinds()
	album := createAlbum(t, gdb, "Clips", VisibilityPublic)

	video := &Video{Upload: Upload{AlbumID: album.ID, Name: "clip"}, VideoFile1: "clip.mp4"}
	mustSave(t, gdb, video, cfg)

	video.IsCover = true
	err := SaveItem(gdb, video, cfg)
	var verr *gallery.ValidationError
	if !errors.As(err, &verr) || verr.Fields["album_photo"] == "" {
		t.Fatalf("SaveItem() error = %v, want album_photo validation error", err)
	}
	var stored Video
	if err := gdb.First(&stored, video.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.IsCover {
		t.Error("cover flag was persisted")
	}

	audio := &Audio{Upload: Upload{AlbumID: album.ID, Name: "a", IsCover: true}, AudioFile1: "a.mp3"}
	if err := SaveItem(gdb, audio, cfg); !errors.As(err, &verr) {
		t.Errorf("audio cover without art: error = %v", err)
	}
	if audio.ID != 0 {
		t.Error("invalid audio was inserted")
	}
}

func TestItemValidation(t *testing.T) {
	cfg := allKinds()
	required := cfg
	required.AudioFormat2Required = true
	required.VideoFormat2Required = true

	tests := []struct {
		name   string
		item   MediaItem
		cfg    gallery.Config
		fields []string
	}{
		{"valid photo", &Photo{Upload: Upload{AlbumID: 1, Name: "p"}, Image: "p.jpg"}, cfg, nil},
		{"photo without image", &Photo{Upload: Upload{AlbumID: 1, Name: "p"}}, cfg, []string{"image"}},
		{"missing name and album", &Photo{Image: "p.jpg"}, cfg, []string{"album_id", "name"}},
		{"wrong audio format", &Audio{Upload: Upload{AlbumID: 1, Name: "a"}, AudioFile1: "track.wav"}, cfg, []string{"audio_file_1"}},
		{"wrong second audio format", &Audio{Upload: Upload{AlbumID: 1, Name: "a"}, AudioFile1: "a.mp3", AudioFile2: "a.mp3"}, cfg, []string{"audio_file_2"}},
		{"second audio required", &Audio{Upload: Upload{AlbumID: 1, Name: "a"}, AudioFile1: "a.mp3"}, required, []string{"audio_file_2"}},
		{"valid video", &Video{Upload: Upload{AlbumID: 1, Name: "v"}, VideoFile1: "v.MP4", VideoFile2: "v.webm"}, cfg, nil},
		{"second video required", &Video{Upload: Upload{AlbumID: 1, Name: "v"}, VideoFile1: "v.mp4"}, required, []string{"video_file_2"}},
		{"long caption", &Photo{Upload: Upload{AlbumID: 1, Name: "p", Caption: strings.Repeat("c", 256)}, Image: "p.jpg"}, cfg, []string{"caption"}},
	}
	for _, tt := range tests {
		err := tt.item.Validate(tt.cfg)
		var got []string
		var verr *gallery.ValidationError
		if errors.As(err, &verr) {
			for _, kind := range []string{"album_id", "audio_file_1", "audio_file_2", "caption", "image", "name", "video_file_1", "video_file_2"} {
				if _, ok := verr.Fields[kind]; ok {
					got = append(got, kind)
				}
			}
		} else if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if !reflect.DeepEqual(got, tt.fields) {
			t.Errorf("%s: invalid fields = %v, want %v", tt.name, got, tt.fields)
		}
	}

	wav := &Audio{Upload: Upload{AlbumID: 1, Name: "a"}, AudioFile1: "track.wav"}
	var verr *gallery.ValidationError
	if !errors.As(wav.Validate(cfg), &verr) {
		t.Fatal("expected validation error")
	}
	if msg := verr.Fields["audio_file_1"]; !strings.Contains(msg, "wav") || !strings.Contains(msg, "mp3") {
		t.Errorf("message %q should name wav and mp3", msg)
	}
}

func TestOrderedItems(t *testing.T) {
	gdb := newTestDB(t)
	cfg := allKinds()
	album := createAlbum(t, gdb, "Sequence", VisibilityPublic)

	audio := &Audio{Upload: Upload{AlbumID: album.ID, Name: "first audio", Ordering: -100}, AudioFile1: "a.mp3"}
	video := &Video{Upload: Upload{AlbumID: album.ID, Name: "video", Ordering: -50}, VideoFile1: "v.mp4"}
	p1 := &Photo{Upload: Upload{AlbumID: album.ID, Name: "b", Ordering: 1}, Image: "b.jpg"}
	p2 := &Photo{Upload: Upload{AlbumID: album.ID, Name: "a", Ordering: 1}, Image: "a.jpg"}
	p3 := &Photo{Upload: Upload{AlbumID: album.ID, Name: "z", Ordering: 0}, Image: "z.jpg"}
	for _, item := range []MediaItem{audio, video, p1, p2, p3} {
		mustSave(t, gdb, item, cfg)
	}

	items, err := OrderedItems(gdb, album.ID, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := []gallery.Item{p3, p2, p1, video, audio}
	if len(items) != len(want) {
		t.Fatalf("OrderedItems() returned %d items", len(items))
	}
	for i := range want {
		if !gallery.SameItem(items[i], want[i]) {
			t.Errorf("position %d = %s, want %s", i, gallery.ItemURL(items[i]), gallery.ItemURL(want[i]))
		}
	}

	photosOnly := gallery.DefaultConfig()
	if photos, _ := OrderedItems(gdb, album.ID, photosOnly); len(photos) != 3 {
		t.Errorf("photos only sequence length = %d", len(photos))
	}
	if n, _ := CountItems(gdb, album.ID, cfg); n != 5 {
		t.Errorf("CountItems() = %d, want 5", n)
	}
	if n, _ := CountItems(gdb, album.ID, photosOnly); n != 3 {
		t.Errorf("CountItems(photos only) = %d, want 3", n)
	}

	byName, err := AlbumItemsByName(gdb, "Sequence", cfg)
	if err != nil || len(byName) != 5 {
		t.Errorf("AlbumItemsByName() = %d items, %v", len(byName), err)
	}
	if byName, err = AlbumItemsByName(gdb, "Missing", cfg); err != nil || byName != nil {
		t.Errorf("AlbumItemsByName(missing) = %v, %v", byName, err)
	}

	nav, err := gallery.NextPrevious(p3, items)
	if err != nil {
		t.Fatal(err)
	}
	if !gallery.SameItem(nav.Previous, audio) || !gallery.SameItem(nav.Next, p2) || nav.Position != 1 || nav.Total != 5 {
		t.Errorf("navigation = %+v", nav)
	}
}

func TestFindAndDeleteItem(t *testing.T) {
	gdb := newTestDB(t)
	cfg := allKinds()
	album := createAlbum(t, gdb, "Find", VisibilityPrivate)
	photo := &Photo{Upload: Upload{AlbumID: album.ID, Name: "p"}, Image: "p.jpg", Thumb: "p_thumb.jpg"}
	mustSave(t, gdb, photo, cfg)

	found, err := FindItem(gdb, gallery.KindPhoto, photo.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ItemAlbum(found).Slug != "find" || !ItemAlbum(found).IsPrivate() {
		t.Errorf("album not preloaded: %+v", ItemAlbum(found))
	}
	if !reflect.DeepEqual(found.StoredFiles(), []string{"p.jpg", "p_thumb.jpg"}) {
		t.Errorf("StoredFiles() = %v", found.StoredFiles())
	}
	if _, err := FindItem(gdb, gallery.KindVideo, photo.ID); !errors.Is(err, gallery.ErrNotFound) {
		t.Errorf("FindItem(wrong kind) error = %v", err)
	}
	if _, err := FindItem(gdb, gallery.Kind("doc"), 1); !errors.Is(err, gallery.ErrNotFound) {
		t.Errorf("FindItem(unknown kind) error = %v", err)
	}
	if err := DeleteItem(gdb, found); err != nil {
		t.Fatal(err)
	}
	if err := DeleteItem(gdb, found); !errors.Is(err, gallery.ErrNotFound) {
		t.Errorf("second DeleteItem() error = %v", err)
	}
}

func TestFileFields(t *testing.T) {
	for _, kind := range gallery.Kinds {
		item := NewItem(kind)
		for _, field := range item.FileFields() {
			item.SetFile(field, field+".bin")
			if item.File(field) != field+".bin" {
				t.Errorf("%s: SetFile/File mismatch for %s", kind, field)
			}
		}
		if len(item.StoredFiles()) != len(item.FileFields()) {
			t.Errorf("%s: StoredFiles() = %v", kind, item.StoredFiles())
		}
	}
	if NewItem(gallery.Kind("doc")) != nil {
		t.Error("NewItem(unknown) should be nil")
	}
}
