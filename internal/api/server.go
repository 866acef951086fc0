package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/vietanh2810/camp-animal-economy/docs"
	v1 "github.com/vietanh2810/camp-animal-economy/internal/api/handler/v1"
	"github.com/vietanh2810/camp-animal-economy/internal/api/middleware"
	"github.com/vietanh2810/camp-animal-economy/internal/config"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, svc v1.MarketService) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	marketHandler := v1.NewMarketHandler(svc)
	streamHandler := v1.NewStreamHandler(svc, conf.API.AllowedCORSDomains)
	cronHandler := v1.NewCronHandler(svc)
	clientConfigHandler := v1.NewClientConfigHandler(conf.Store)
	s.MountHandlers(marketHandler, streamHandler, cronHandler, clientConfigHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	marketHandler *v1.MarketHandler,
	streamHandler *v1.StreamHandler,
	cronHandler *v1.CronHandler,
	clientConfigHandler *v1.ClientConfigHandler,
) {
	const basePath = "/api/v1"

	auth := middleware.NewAuthenticator(s.Config.API.CronSigningKey)

	market := s.Router.Group(basePath)
	{
		market.GET("/market", marketHandler.HandleListMarket)
		market.GET("/market/stream", streamHandler.HandleStream)
		market.GET("/market/:type", marketHandler.HandleGetMarketItem)
		market.POST("/market/:type/collect", marketHandler.HandleCollect)
		market.GET("/client-config", clientConfigHandler.HandleClientConfig)
	}

	admin := s.Router.Group(basePath, auth.VerifyJWT())
	{
		admin.POST("/market", marketHandler.HandleCreateMarketItem)
	}

	cron := s.Router.Group("/api", auth.VerifyJWT())
	{
		cron.GET("/cron", cronHandler.HandleCron)
		cron.POST("/cron", cronHandler.HandleCron)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Camp animal economy API"
	docs.SwaggerInfo.Description = "Market prices, collection and the demand trigger."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
