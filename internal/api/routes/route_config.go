package routes

import (
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/api/handlers"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/middleware"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/jwt"
	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App                 *fiber.App
	UserHandler         handlers.UserHandler
	GroupHandler        handlers.GroupHandler
	HarvestHandler      handlers.HarvestHandler
	AnalysisHandler     handlers.AnalysisHandler
	ProposalHandler     handlers.ProposalHandler
	NotificationHandler handlers.NotificationHandler
	ContentHandler      handlers.ContentHandler
	Middleware          middleware.Middleware
	JWTService          jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Groups()
	c.Harvests()
	c.Analyses()
	c.Proposals()
	c.Notifications()
	c.Content()
	c.GuestRoute()
}

func (c *Config) auth() fiber.Handler {
	return c.Middleware.AuthMiddleware(c.JWTService)
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Get("/me", c.auth(), c.UserHandler.Me)
		user.Patch("/update", c.auth(), c.UserHandler.UpdateUser)
		user.Post("/avatar", c.auth(), c.UserHandler.UpdateAvatar)
		user.Patch("/password", c.auth(), c.UserHandler.ChangePassword)
		user.Post("/forget", c.UserHandler.ForgotPassword)
		user.Post("/reset", c.UserHandler.ResetPassword)
	}
}

func (c *Config) Groups() {
	groups := c.App.Group("/api/v1/groups", c.auth())
	groups.Post("", c.Middleware.RoleMiddleware(domain.RoleProducer), c.GroupHandler.CreateGroup)
	groups.Get("", c.GroupHandler.GetGroups)
	groups.Get("/owned", c.GroupHandler.GetOwnedGroups)
	groups.Get("/participating", c.GroupHandler.GetParticipatingGroups)
	groups.Get("/membership", c.GroupHandler.GetMembership)
	groups.Get("/:id", c.GroupHandler.GetGroupDetails)
	groups.Patch("/:id", c.GroupHandler.UpdateGroup)
	groups.Patch("/:id/stock", c.GroupHandler.AdjustStock)
	groups.Delete("/:id", c.GroupHandler.DeleteGroup)

	groups.Post("/:id/participants", c.GroupHandler.AddParticipant)
	groups.Delete("/:id/participants/:userId", c.GroupHandler.RemoveParticipant)
}

func (c *Config) Harvests() {
	harvests := c.App.Group("/api/v1/harvests", c.auth())
	harvests.Post("", c.HarvestHandler.CreateHarvest)
	harvests.Get("", c.HarvestHandler.GetHarvests)
	harvests.Get("/all", c.HarvestHandler.GetAllHarvests)
	harvests.Patch("/:id", c.HarvestHandler.UpdateHarvest)
	harvests.Delete("/:id", c.HarvestHandler.DeleteHarvest)
}

func (c *Config) Analyses() {
	analyses := c.App.Group("/api/v1/analyses", c.auth())
	analyses.Post("", c.AnalysisHandler.Classify)
	analyses.Get("", c.AnalysisHandler.GetAnalyses)
	analyses.Get("/:id", c.AnalysisHandler.GetAnalysisDetails)
}

func (c *Config) Proposals() {
	proposals := c.App.Group("/api/v1/proposals", c.auth())
	representative := c.Middleware.RoleMiddleware(domain.RoleRepresentative)

	proposals.Post("", representative, c.ProposalHandler.CreateProposal)
	proposals.Get("/sent", representative, c.ProposalHandler.GetSentProposals)
	proposals.Get("/received", c.ProposalHandler.GetReceivedProposals)
	proposals.Get("/unread", c.ProposalHandler.GetUnreadCounts)
	proposals.Patch("/:id/viewed", c.ProposalHandler.MarkViewed)
	proposals.Delete("/:id", c.ProposalHandler.DeleteProposal)
}

func (c *Config) Notifications() {
	notifications := c.App.Group("/api/v1/notifications", c.auth())
	notifications.Get("", c.NotificationHandler.GetNotifications)
	notifications.Get("/unread", c.NotificationHandler.GetUnreadCount)
	notifications.Post("", c.NotificationHandler.SendNotification)
	notifications.Patch("/:id/read", c.NotificationHandler.MarkRead)
	notifications.Post("/subscriptions", c.NotificationHandler.Subscribe)
	notifications.Delete("/subscriptions", c.NotificationHandler.Unsubscribe)
}

func (c *Config) Content() {
	content := c.App.Group("/api/v1/content", c.auth())
	content.Get("/articles", c.ContentHandler.GetArticles)

	content.Get("/posts/:postId/comments", c.ContentHandler.GetComments)
	content.Post("/posts/:postId/comments", c.ContentHandler.AddComment)
	content.Patch("/comments/:id", c.ContentHandler.EditComment)
	content.Delete("/comments/:id", c.ContentHandler.DeleteComment)

	content.Post("/posts/:postId/like", c.ContentHandler.ToggleLike)
	content.Get("/posts/:postId/likes", c.ContentHandler.GetLikes)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
