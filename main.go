package main

import (
	"log"
	"strings"
	"time"

	"mediaalbums/auth"
	"mediaalbums/config"
	"mediaalbums/db"
	"mediaalbums/handlers"
	"mediaalbums/logger"
	"mediaalbums/models"
	"mediaalbums/notify"
	"mediaalbums/storage"
	"mediaalbums/utils"
	"mediaalbums/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionCookieName     = "token"
	sessionExpirationTime = 30 * 86400 // 30 days
	mediaCacheTime        = 7 * 86400
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if _, err := logger.Init(settings.Debug); err != nil {
		log.Fatalf("Logger error: %v", err)
	}
	defer logger.Sync()
	l := logger.L()

	gdb, err := db.Open(db.Config{MySQLDSN: settings.MySQLDSN, SQLiteFile: settings.SQLiteFile, Debug: settings.Debug})
	if err != nil {
		l.Fatal("opening database", zap.Error(err))
	}
	if err := models.Init(gdb); err != nil {
		l.Fatal("migrating database", zap.Error(err))
	}
	if created, err := models.EnsureAdmin(gdb, settings.AdminName, settings.AdminEmail, settings.AdminPassword); err != nil {
		l.Fatal("creating admin user", zap.Error(err))
	} else if created {
		l.Info("created admin user", zap.String("email", settings.AdminEmail))
	}
	store, err := storage.New(&settings.Storage)
	if err != nil {
		l.Fatal("opening storage", zap.Error(err))
	}

	var mailer notify.Mailer = notify.LogMailer{}
	if settings.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(settings.SMTPHost, settings.SMTPPort, settings.SMTPUser, settings.SMTPPassword)
	}

	if !settings.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if settings.Debug {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))

	// HTML templates
	router.LoadHTMLGlob("templates/*.tmpl")

	sessionKey := settings.SessionKey
	if sessionKey == "" {
		sessionKey = utils.RandSalt(64)
		l.Warn("SESSION_KEY is not set, sessions will not survive a restart")
	}
	cookieStore := gormsessions.NewStore(gdb, true, []byte(sessionKey))
	cookieStore.Options(sessions.Options{Path: "/", MaxAge: sessionExpirationTime, HttpOnly: true})
	router.Use(sessions.Sessions(sessionCookieName, cookieStore))
	if !settings.Debug {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{storage.URLPrefix})))
	}
	router.Use(auth.WithUser(gdb))
	// No cache by default, stored media is cached publicly
	noCache := (&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()
	mediaCache := (&utils.CacheRouter{CacheTime: mediaCacheTime, Public: true}).Handler()
	router.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, storage.URLPrefix) {
			mediaCache(c)
			return
		}
		noCache(c)
	})

	api := &handlers.API{DB: gdb, Storage: store, Gallery: settings.Gallery()}
	api.Register(router)
	site := &web.Site{
		DB:        gdb,
		Storage:   store,
		Gallery:   settings.Gallery(),
		Mailer:    mailer,
		FromEmail: settings.DefaultFromEmail,
		PublicURL: settings.PublicURL,
	}
	site.Register(router)

	if len(settings.TLSDomains) > 0 {
		err = autotls.Run(router, settings.TLSDomains...)
	} else {
		err = router.Run(settings.BindAddress)
	}
	l.Fatal("server stopped", zap.Error(err))
}
