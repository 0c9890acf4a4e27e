package collab

import (
	"github.com/gofiber/websocket/v2"

	"workspace-server/internal/model"
)

// ServeWS обработчик websocket-соединения канала присутствия.
// Идентификатор файла берётся из пути, участник — из контекста
// аутентификации. Разрыв соединения убирает участника из комнаты.
func ServeWS(hub *Hub) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		fileID := conn.Params("id")
		user, ok := conn.Locals("user").(*model.User)
		if !ok || fileID == "" {
			conn.Close()
			return
		}

		client := hub.Join(fileID, user.ID, user.Login)
		defer hub.Leave(client)

		// Насос записи: живёт до закрытия канала событий клиента
		go func() {
			for ev := range client.Events() {
				if err := conn.WriteJSON(ev); err != nil {
					break
				}
			}
			conn.Close()
		}()

		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			hub.Handle(client, ev)
		}
	}
}
