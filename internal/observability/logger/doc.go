// Package logger provee un logger Zap singleton con scoping por contexto.
//
// # Design Decisions
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context Scoping: cada request lleva su propio logger "scoped" con
//     request_id, user_id y provider sin crear un nuevo core.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON y "test"
//     descarta todo.
//   - Secretos: los tokens de proveedores nunca se loguean. Usar
//     TokenPresence para registrar solo presencia y longitud.
//
// # Usage
//
// Inicialización (una vez en el comando serve):
//
//	logger.Init(logger.Config{
//	    Env:   cfg.App.Env,
//	    Level: cfg.Log.Level,
//	})
//	defer logger.Sync()
//
// En handlers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Provider(p))
//	log.Info("credential stored", logger.TokenPresence("access_token", tok)...)
package logger
