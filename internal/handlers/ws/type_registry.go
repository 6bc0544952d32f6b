package ws

func init() {
	RegisterType(&EventAuthenticate{})
	RegisterType(&EventJoinPrivateChat{})
	RegisterType(&EventJoinGroupChat{})
	RegisterType(&PrivateMessageEvent{})
	RegisterType(&GroupMessageEvent{})
	RegisterType(&EventGetGroupConversations{})
	RegisterType(&EventGetMessages{})
	RegisterType(&EventMarkRead{})
	RegisterType(&EventPing{})
}
