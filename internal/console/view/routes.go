package view

// Route paths.
const (
	PathLogin         = "/login"
	PathResetRequest  = "/reset-request"
	PathResetPassword = "/reset-password"

	PathHome  = "/"
	PathAdmin = "/admin"
	PathMail  = "/mail"

	PathAdminUsers      = "/admin/users"
	PathAdminAuditLog   = "/admin/auditlog"
	PathAdminFiles      = "/admin/files"
	PathAdminOnboarding = "/admin/onboarding"
	PathRecipients      = "/recipients"
	PathTemplates       = "/templates"
	PathStammdaten      = "/stammdaten"
)

// Deps are the collaborators of the route table.
type Deps struct {
	API   API
	Gate  Checker
	Flags ExpiredFlag
}

// Register installs the console's route table on r.
func Register(r *Router, d Deps) {
	auth := RequireAuth(d.Gate, r)
	admin := RequireAdmin(d.Gate)

	r.Handle(PathLogin, Login(d.API, d.Flags, r))
	r.Handle(PathResetRequest, ResetRequest(d.API))
	r.Handle(PathResetPassword, ResetPassword(d.API, r))

	r.Handle(PathHome, Chain(Dashboard(d.API), auth))
	r.Handle(PathMail, Chain(Resource(d.API, "Neue Mail senden",
		Section{"Kreise", "/kreise"},
		Section{"Szenarien", "/szenarien"},
	), auth))

	r.Handle(PathAdmin, Chain(AdminDashboard(), auth, admin))
	r.Handle(PathAdminUsers, Chain(Resource(d.API, "Benutzer", Section{"Benutzer", "/users"}), auth, admin))
	r.Handle(PathAdminAuditLog, Chain(Resource(d.API, "Audit-Log", Section{"Audit-Log", "/auditlog"}), auth, admin))
	r.Handle(PathAdminFiles, Chain(Resource(d.API, "Datei-Galerie", Section{"Dateien", "/upload"}), auth, admin))
	r.Handle(PathAdminOnboarding, Chain(Onboarding(), auth, admin))
	r.Handle(PathRecipients, Chain(Resource(d.API, "Empfänger",
		Section{"Empfänger", "/recipients"},
		Section{"Kreise", "/kreise"},
	), auth, admin))
	r.Handle(PathTemplates, Chain(Resource(d.API, "Mail-Templates", Section{"Mail-Templates", "/templates"}), auth, admin))
	r.Handle(PathStammdaten, Chain(Resource(d.API, "Stammdaten",
		Section{"Kreise", "/kreise"},
		Section{"Szenarien", "/szenarien"},
	), auth, admin))

	r.Redirect("/users", PathAdminUsers)
	r.Redirect("/auditlog", PathAdminAuditLog)
}
