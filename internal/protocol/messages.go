package protocol

// Wire literals exchanged over the framed text protocol. Every outbound
// message gets the two-byte terminator appended by Codec.Send.
const (
	ServerMove        = "102 MOVE"
	ServerTurnLeft    = "103 TURN LEFT"
	ServerTurnRight   = "104 TURN RIGHT"
	ServerPickUp      = "105 GET MESSAGE"
	ServerLogout      = "106 LOGOUT"
	ServerOK          = "200 OK"
	ServerLoginFailed = "300 LOGIN FAILED"
	ServerSyntaxError = "301 SYNTAX ERROR"
	ServerLogicError  = "302 LOGIC ERROR"

	ClientRecharging = "RECHARGING"
	ClientFullPower  = "FULL POWER"
)

// Payload size caps, in bytes, excluding the two-byte terminator.
const (
	MaxUsername     = 18
	MaxConfirmation = 5
	MaxOKConfirm    = 10
	MaxRecharging   = 10
	MaxFullPower    = 10
	MaxSecretMsg    = 98
)
