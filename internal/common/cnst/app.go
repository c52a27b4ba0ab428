package cnst

const (
	AppName     = "studentliving"
	CommandName = "studentliving"
)
