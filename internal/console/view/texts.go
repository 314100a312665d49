package view

// User-facing texts.
const (
	TextAdminOnly        = "Nur für Admins sichtbar."
	TextSessionExpired   = "Deine Session ist abgelaufen. Bitte melde dich erneut an."
	TextOffline          = "Verbindung zum Server verloren. Änderungen werden evtl. nicht gespeichert."
	TextReconnected      = "Verbindung wiederhergestellt."
	TextLoginFailed      = "Login fehlgeschlagen"
	TextResetSent        = "Falls die E-Mail existiert, wurde eine Reset-Mail versendet."
	TextResetSendFailed  = "Fehler beim Absenden."
	TextResetNoToken     = "Kein Token angegeben."
	TextResetDone        = "Passwort erfolgreich gesetzt! Du wirst weitergeleitet ..."
	TextResetFailed      = "Fehler beim Zurücksetzen."
	TextLoadFailed       = "Fehler beim Laden der Daten."
	TextNotFound         = "Seite nicht gefunden."
	textSessionToastTmpl = "Deine Session läuft in %s ab. Bitte bleibe aktiv oder speichere deine Arbeit."
)
