package tools

const recipientHelp = `Phone number with country code and no symbols, or a JID such as "123456789@s.whatsapp.net" or a group JID like "123456789@g.us"`

// New creates a registry with every WhatsApp tool bound to reader and sender.
func New(reader Reader, sender Sender, opts ...Option) *Registry {
	r := NewRegistry(opts...)
	RegisterAll(r, reader, sender)
	return r
}

// RegisterAll adds the WhatsApp tools to r.
func RegisterAll(r *Registry, reader Reader, sender Sender) {
	h := &handlers{reader: reader, sender: sender}

	// Contacts and chats.
	r.Register(Tool{
		Name:        "search_contacts",
		Description: "Search WhatsApp contacts by name, phone number or nickname.",
		Params: []Param{
			{Name: "query", Type: String, Required: true, Description: "Search term to match against contact names or phone numbers"},
		},
		Handler: bind(h.searchContacts),
	})
	r.Register(Tool{
		Name:        "list_messages",
		Description: "Get WhatsApp messages matching the given criteria, newest first.",
		Params: []Param{
			{Name: "after", Type: String, Description: "ISO-8601 timestamp; only messages at or after it"},
			{Name: "before", Type: String, Description: "ISO-8601 timestamp; only messages before it"},
			{Name: "sender_phone_number", Type: String, Description: "Phone number of the sender"},
			{Name: "chat_jid", Type: String, Description: "Chat JID to filter messages by"},
			{Name: "query", Type: String, Description: "Search term matched against message content"},
			{Name: "limit", Type: Number, Default: 20.0, Description: "Maximum number of messages to return"},
			{Name: "page", Type: Number, Default: 0.0, Description: "Zero-based page number"},
			{Name: "include_context", Type: Boolean, Default: true, Description: "Include surrounding messages for each match"},
			{Name: "context_before", Type: Number, Default: 1.0, Description: "Messages to include before each match"},
			{Name: "context_after", Type: Number, Default: 1.0, Description: "Messages to include after each match"},
		},
		Handler: bind(h.listMessages),
	})
	r.Register(Tool{
		Name:        "list_chats",
		Description: "Get WhatsApp chats matching the given criteria.",
		Params: []Param{
			{Name: "query", Type: String, Description: "Search term matched against chat name or JID"},
			{Name: "limit", Type: Number, Default: 20.0, Description: "Maximum number of chats to return"},
			{Name: "page", Type: Number, Default: 0.0, Description: "Zero-based page number"},
			{Name: "include_last_message", Type: Boolean, Default: true, Description: "Include the last message of each chat"},
			{Name: "sort_by", Type: String, Default: "last_active", Enum: []string{"last_active", "name"}, Description: "Sort order"},
		},
		Handler: bind(h.listChats),
	})
	r.Register(Tool{
		Name:        "get_chat",
		Description: "Get WhatsApp chat metadata and statistics by JID.",
		Params: []Param{
			{Name: "chat_jid", Type: String, Required: true, Description: "The JID of the chat"},
			{Name: "include_last_message", Type: Boolean, Default: true, Description: "Include the last message"},
		},
		Handler: bind(h.getChat),
	})
	r.Register(Tool{
		Name:        "get_direct_chat_by_contact",
		Description: "Get the direct WhatsApp chat with a phone number.",
		Params: []Param{
			{Name: "sender_phone_number", Type: String, Required: true, Description: "The phone number to search for"},
		},
		Handler: bind(h.directChatByContact),
	})
	r.Register(Tool{
		Name:        "get_contact_chats",
		Description: "Get all WhatsApp chats involving the contact.",
		Params: []Param{
			{Name: "jid", Type: String, Required: true, Description: "The contact's JID"},
			{Name: "limit", Type: Number, Default: 20.0, Description: "Maximum number of chats to return"},
			{Name: "page", Type: Number, Default: 0.0, Description: "Zero-based page number"},
		},
		Handler: bind(h.contactChats),
	})
	r.Register(Tool{
		Name:        "get_last_interaction",
		Description: "Get the most recent WhatsApp message involving the contact.",
		Params: []Param{
			{Name: "jid", Type: String, Required: true, Description: "The contact's JID"},
		},
		Handler: bind(h.lastInteraction),
	})
	r.Register(Tool{
		Name:        "get_message_context",
		Description: "Get the messages around a specific WhatsApp message.",
		Params: []Param{
			{Name: "message_id", Type: String, Required: true, Description: "The ID of the message"},
			{Name: "before", Type: Number, Default: 5.0, Description: "Messages to include before the target"},
			{Name: "after", Type: Number, Default: 5.0, Description: "Messages to include after the target"},
		},
		Handler: bind(h.messageContext),
	})
	r.Register(Tool{
		Name:        "get_chat_statistics",
		Description: "Count a chat's messages: total, today and in the last 7 days.",
		Params: []Param{
			{Name: "chat_jid", Type: String, Required: true, Description: "The JID of the chat"},
		},
		Handler: bind(h.chatStatistics),
	})
	r.Register(Tool{
		Name:        "get_contact_details",
		Description: "Get detailed information and activity for a WhatsApp contact.",
		Params: []Param{
			{Name: "identifier", Type: String, Required: true, Description: "Either a JID or a phone number"},
		},
		Handler: bind(h.contactDetails),
	})
	r.Register(Tool{
		Name:        "list_all_contacts",
		Description: "List WhatsApp contacts with their information.",
		Params: []Param{
			{Name: "limit", Type: Number, Default: 100.0, Description: "Maximum number of contacts to return"},
		},
		Handler: bind(h.listContacts),
	})

	// Nicknames.
	r.Register(Tool{
		Name:        "set_nickname",
		Description: "Set a custom nickname for a WhatsApp contact.",
		Params: []Param{
			{Name: "jid", Type: String, Required: true, Description: "The JID of the contact"},
			{Name: "nickname", Type: String, Required: true, Description: "The nickname to set"},
		},
		Handler: bind(h.setNickname),
		Flatten: true,
	})
	r.Register(Tool{
		Name:        "get_nickname",
		Description: "Get the custom nickname for a WhatsApp contact.",
		Params: []Param{
			{Name: "jid", Type: String, Required: true, Description: "The JID of the contact"},
		},
		Handler: bind(h.getNickname),
	})
	r.Register(Tool{
		Name:        "remove_nickname",
		Description: "Remove the custom nickname for a WhatsApp contact.",
		Params: []Param{
			{Name: "jid", Type: String, Required: true, Description: "The JID of the contact"},
		},
		Handler: bind(h.removeNickname),
		Flatten: true,
	})
	r.Register(Tool{
		Name:        "list_nicknames",
		Description: "List all custom contact nicknames.",
		Handler:     bind(h.listNicknames),
	})

	// Bridge operations.
	r.Register(Tool{
		Name:        "send_message",
		Description: "Send a WhatsApp text message to a person or group.",
		Params: []Param{
			{Name: "recipient", Type: String, Required: true, Description: recipientHelp},
			{Name: "message", Type: String, Required: true, Description: "The message text to send"},
		},
		Handler: bind(h.sendMessage),
		Flatten: true,
	})
	r.Register(Tool{
		Name:        "send_file",
		Description: "Send a picture, video, raw audio or document via WhatsApp.",
		Params: []Param{
			{Name: "recipient", Type: String, Required: true, Description: recipientHelp},
			{Name: "media_path", Type: String, Required: true, Description: "Absolute path to the file to send"},
		},
		Handler: bind(h.sendFile),
		Flatten: true,
	})
	r.Register(Tool{
		Name:        "send_audio_message",
		Description: "Send an Opus .ogg file as a WhatsApp voice message. Use send_file for other audio formats.",
		Params: []Param{
			{Name: "recipient", Type: String, Required: true, Description: recipientHelp},
			{Name: "media_path", Type: String, Required: true, Description: "Absolute path to the .ogg file"},
		},
		Handler: bind(h.sendAudio),
		Flatten: true,
	})
	r.Register(Tool{
		Name:        "send_reaction",
		Description: "React to a WhatsApp message with an emoji.",
		Params: []Param{
			{Name: "chat_jid", Type: String, Required: true, Description: "The JID of the chat containing the message"},
			{Name: "message_id", Type: String, Required: true, Description: "The ID of the message to react to"},
			{Name: "emoji", Type: String, Default: "", Description: "The emoji to react with; empty removes the reaction"},
		},
		Handler: bind(h.sendReaction),
		Flatten: true,
	})
	r.Register(Tool{
		Name:        "edit_message",
		Description: "Edit a previously sent WhatsApp message.",
		Params: []Param{
			{Name: "chat_jid", Type: String, Required: true, Description: "The JID of the chat containing the message"},
			{Name: "message_id", Type: String, Required: true, Description: "The ID of the message to edit"},
			{Name: "new_content", Type: String, Required: true, Description: "The new message text"},
		},
		Handler: bind(h.editMessage),
		Flatten: true,
	})
	r.Register(Tool{
		Name:        "delete_message",
		Description: "Delete (revoke) a WhatsApp message for everyone.",
		Params: []Param{
			{Name: "chat_jid", Type: String, Required: true, Description: "The JID of the chat containing the message"},
			{Name: "message_id", Type: String, Required: true, Description: "The ID of the message to delete"},
			{Name: "sender_jid", Type: String, Description: "Sender JID, for admins revoking others' messages in groups"},
		},
		Handler: bind(h.deleteMessage),
		Flatten: true,
	})
	r.Register(Tool{
		Name:        "mark_read",
		Description: "Mark WhatsApp messages as read.",
		Params: []Param{
			{Name: "chat_jid", Type: String, Required: true, Description: "The JID of the chat containing the messages"},
			{Name: "message_ids", Type: Array, Required: true, Description: "IDs of the messages to mark as read"},
			{Name: "sender_jid", Type: String, Description: "Sender JID; required for group chats"},
		},
		Handler: bind(h.markRead),
		Flatten: true,
	})
	r.Register(Tool{
		Name:        "get_group_info",
		Description: "Get a WhatsApp group's name, topic and participants from the bridge.",
		Params: []Param{
			{Name: "group_jid", Type: String, Required: true, Description: `The JID of the group, e.g. "123456789@g.us"`},
		},
		Handler: bind(h.groupInfo),
		Flatten: true,
	})
	r.Register(Tool{
		Name:        "create_group",
		Description: "Create a WhatsApp group.",
		Params: []Param{
			{Name: "name", Type: String, Required: true, Description: "Group name"},
			{Name: "participants", Type: Array, Required: true, Description: "Phone numbers or JIDs of the members"},
		},
		Handler: bind(h.createGroup),
		Flatten: true,
	})
	r.Register(Tool{
		Name:        "create_poll",
		Description: "Send a poll to a WhatsApp chat.",
		Params: []Param{
			{Name: "chat_jid", Type: String, Required: true, Description: "The chat to send the poll to"},
			{Name: "question", Type: String, Required: true, Description: "The poll question"},
			{Name: "options", Type: Array, Required: true, Description: "Between 2 and 12 answer options"},
			{Name: "multi_select", Type: Boolean, Default: false, Description: "Allow selecting more than one option"},
		},
		Handler: bind(h.createPoll),
		Flatten: true,
	})
}
