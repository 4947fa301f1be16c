// Package redisserver serves the key-value store over RESP, the Redis
// wire protocol.
//
// Requests are arrays of bulk strings (inline commands are also
// accepted). Supported commands:
//
//	SET <key> <json-object>   +OK
//	GET <key>                 bulk string, or null bulk when absent
//	DEL <key>                 :1 if the key existed, :0 otherwise
//	PING [message]            +PONG, or the message echoed as bulk
//	QUIT                      +OK, then the connection closes
//
// Command names are case-insensitive. A bad command or argument gets an
// error reply and the connection stays usable; a framing error closes
// the connection after the error reply, since the next request boundary
// cannot be found.
package redisserver
